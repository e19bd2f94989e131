package components

import (
	"math"

	"thloop/network"
)

// Turbine expands to an outlet pressure (absolute or as a pressure ratio)
// with an isentropic efficiency:
// h_out = h_in - eta_is*(h_in - h(p_out, s_in)).
type Turbine struct {
	network.Base

	EtaIs float64 // isentropic efficiency (0,1]

	toPressure bool
	pOut       float64
	pr         float64
}

// NewTurbineToPressure creates a turbine expanding to pOut [Pa].
func NewTurbineToPressure(name string, pOut, etaIs float64) *Turbine {
	return &Turbine{Base: network.NewBase(name), EtaIs: etaIs, pOut: pOut, toPressure: true}
}

// NewTurbinePressureRatio creates a turbine with p_out = pr * p_in.
func NewTurbinePressureRatio(name string, pr, etaIs float64) *Turbine {
	return &Turbine{Base: network.NewBase(name), EtaIs: etaIs, pr: pr}
}

func (t *Turbine) Equations(ev *network.Eval) ([]network.Equation, error) {
	in, err := t.In("in")
	if err != nil {
		return nil, err
	}
	out, err := t.Out("out")
	if err != nil {
		return nil, err
	}

	m := ev.Val(in.M)
	pIn := ev.Val(in.P)
	hIn := ev.Val(in.H)

	pOut := t.pOut
	if !t.toPressure {
		pOut = t.pr * pIn
	}

	sIn, err := ev.Props.S(pIn, hIn)
	if err != nil {
		return nil, err
	}
	hIs, err := ev.Props.HPS(pOut, sIn)
	if err != nil {
		return nil, err
	}
	hOut := hIn - t.EtaIs*(hIn-hIs)

	return []network.Equation{
		{
			Name:     t.Name() + ".mass",
			Residual: ev.Val(out.M) - m,
			Scale:    math.Max(1, math.Abs(m)),
		},
		{
			Name:     t.Name() + ".p_out",
			Residual: ev.Val(out.P) - pOut,
			Scale:    math.Max(1e5, math.Abs(pOut)),
		},
		{
			Name:     t.Name() + ".energy",
			Residual: ev.Val(out.H) - hOut,
			Scale:    math.Max(1e5, math.Abs(hOut)),
		},
	}, nil
}

// ShaftPower is the power extracted from the fluid at the committed
// network state [W].
func (t *Turbine) ShaftPower() float64 {
	in, err := t.In("in")
	if err != nil {
		return 0
	}
	out, err := t.Out("out")
	if err != nil {
		return 0
	}
	return in.M.Value() * (in.H.Value() - out.H.Value())
}
