package components

import (
	"math"

	"thloop/network"
)

// Pump raises pressure either to an absolute outlet pressure or by a fixed
// rise, with an efficiency-penalized enthalpy rise:
// h_out = h_in + (p_out - p_in)/(rho_in * eta).
type Pump struct {
	network.Base

	Eta float64 // pump efficiency (0,1]

	toPressure bool
	pOut       float64
	dp         float64
}

// NewPumpToPressure creates a pump driving its outlet to pOut [Pa].
func NewPumpToPressure(name string, pOut, eta float64) *Pump {
	return &Pump{Base: network.NewBase(name), Eta: eta, pOut: pOut, toPressure: true}
}

// NewPumpDeltaP creates a pump with a fixed pressure rise dp [Pa].
func NewPumpDeltaP(name string, dp, eta float64) *Pump {
	return &Pump{Base: network.NewBase(name), Eta: eta, dp: dp}
}

func (p *Pump) Equations(ev *network.Eval) ([]network.Equation, error) {
	in, err := p.In("in")
	if err != nil {
		return nil, err
	}
	out, err := p.Out("out")
	if err != nil {
		return nil, err
	}

	m := ev.Val(in.M)
	pIn := ev.Val(in.P)
	hIn := ev.Val(in.H)

	pOut := p.pOut
	if !p.toPressure {
		pOut = pIn + p.dp
	}

	rhoIn, err := ev.Props.Rho(pIn, hIn)
	if err != nil {
		return nil, err
	}
	hOut := hIn + (pOut-pIn)/math.Max(1e-9, rhoIn*p.Eta)

	return []network.Equation{
		{
			Name:     p.Name() + ".mass",
			Residual: ev.Val(out.M) - m,
			Scale:    math.Max(1, math.Abs(m)),
		},
		{
			Name:     p.Name() + ".p_out",
			Residual: ev.Val(out.P) - pOut,
			Scale:    math.Max(1e5, math.Abs(pOut)),
		},
		{
			Name:     p.Name() + ".energy",
			Residual: ev.Val(out.H) - hOut,
			Scale:    math.Max(1e5, math.Abs(hOut)),
		},
	}, nil
}

// ShaftPower is the power delivered to the fluid at the committed network
// state [W].
func (p *Pump) ShaftPower() float64 {
	in, err := p.In("in")
	if err != nil {
		return 0
	}
	out, err := p.Out("out")
	if err != nil {
		return 0
	}
	return in.M.Value() * (out.H.Value() - in.H.Value())
}
