package components

import (
	"math"

	"thloop/correl"
	"thloop/network"
)

// Pipe is a 1-in/1-out element with friction, form loss, gravity and
// acceleration pressure drop, two-phase aware through mixture properties
// at (p,h). Steady-state integral momentum model.
type Pipe struct {
	network.Base

	Geo      correl.Geometry
	Q        float64 // heat added to the fluid [W], 0 = adiabatic
	Friction correl.Model

	// IncludeAccel switches the momentum-flux (acceleration) term.
	IncludeAccel bool
}

// NewPipe creates an adiabatic pipe with the given geometry.
func NewPipe(name string, geo correl.Geometry) *Pipe {
	return &Pipe{Base: network.NewBase(name), Geo: geo, IncludeAccel: true}
}

func (p *Pipe) Equations(ev *network.Eval) ([]network.Equation, error) {
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
	pOut := ev.Val(out.P)
	hOut := ev.Val(out.H)

	eqs := []network.Equation{{
		Name:     p.Name() + ".mass",
		Residual: ev.Val(out.M) - m,
		Scale:    math.Max(1, math.Abs(m)),
	}}

	dh := 0.0
	if math.Abs(m) > 1e-9 {
		dh = p.Q / m
	}
	hTarget := hIn + dh
	eqs = append(eqs, network.Equation{
		Name:     p.Name() + ".energy",
		Residual: hOut - hTarget,
		Scale:    math.Max(1e5, math.Abs(hTarget)),
	})

	dp, err := correl.PipeDrop(ev.Props, p.Friction.Resolve(ev.Friction),
		m, pIn, hIn, pOut, hOut, p.Geo, p.IncludeAccel, true)
	if err != nil {
		return nil, err
	}
	eqs = append(eqs, network.Equation{
		Name:     p.Name() + ".dp",
		Residual: (pIn - pOut) - dp.Total(),
		Scale:    math.Max(1e5, math.Abs(pIn)),
	})

	return eqs, nil
}
