package components

import (
	"math"

	"thloop/network"
)

// Heater adds heat at a fixed hydraulic pressure drop. The outlet thermal
// state is set either by an outlet temperature or an outlet enthalpy.
type Heater struct {
	network.Base

	Dp float64 // pressure drop across the heater [Pa]

	byTemp bool
	tOut   float64
	hOut   float64
}

// NewHeaterToTemp creates a heater driving the outlet to tOut [K].
func NewHeaterToTemp(name string, tOut, dp float64) *Heater {
	return &Heater{Base: network.NewBase(name), Dp: dp, tOut: tOut, byTemp: true}
}

// NewHeaterToEnthalpy creates a heater driving the outlet to hOut [J/kg].
func NewHeaterToEnthalpy(name string, hOut, dp float64) *Heater {
	return &Heater{Base: network.NewBase(name), Dp: dp, hOut: hOut}
}

func (h *Heater) Equations(ev *network.Eval) ([]network.Equation, error) {
	in, err := h.In("in")
	if err != nil {
		return nil, err
	}
	out, err := h.Out("out")
	if err != nil {
		return nil, err
	}

	m := ev.Val(in.M)
	pIn := ev.Val(in.P)
	pOut := pIn - h.Dp

	hTarget := h.hOut
	if h.byTemp {
		hTarget, err = ev.Props.HPT(pOut, h.tOut)
		if err != nil {
			return nil, err
		}
	}

	return []network.Equation{
		{
			Name:     h.Name() + ".mass",
			Residual: ev.Val(out.M) - m,
			Scale:    math.Max(1, math.Abs(m)),
		},
		{
			Name:     h.Name() + ".dp",
			Residual: (pIn - ev.Val(out.P)) - h.Dp,
			Scale:    math.Max(1e5, math.Abs(pIn)),
		},
		{
			Name:     h.Name() + ".h_out",
			Residual: ev.Val(out.H) - hTarget,
			Scale:    math.Max(1e5, math.Abs(hTarget)),
		},
	}, nil
}

// HeatAdded is the heat transferred to the fluid at the committed network
// state [W].
func (h *Heater) HeatAdded() float64 {
	in, err := h.In("in")
	if err != nil {
		return 0
	}
	out, err := h.Out("out")
	if err != nil {
		return 0
	}
	return in.M.Value() * (out.H.Value() - in.H.Value())
}
