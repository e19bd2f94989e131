package components

import (
	"fmt"
	"math"

	"thloop/network"
)

// Mixer merges two or more inlets into one outlet with no pressure drop:
// all pressures equalize, mass adds up and mixing is adiabatic (m*h
// conserved). Inlet ports are named in1, in2, ... in attach order.
type Mixer struct {
	network.Base

	n int // number of inlets
}

// NewMixer creates a mixer with n inlets (n >= 2).
func NewMixer(name string, n int) *Mixer {
	return &Mixer{Base: network.NewBase(name), n: n}
}

// InletPort returns the port name of inlet i (0-based).
func (mx *Mixer) InletPort(i int) string { return fmt.Sprintf("in%d", i+1) }

func (mx *Mixer) Equations(ev *network.Eval) ([]network.Equation, error) {
	if mx.n < 2 {
		return nil, fmt.Errorf("%s: mixer needs at least 2 inlets", mx.Name())
	}
	out, err := mx.Out("out")
	if err != nil {
		return nil, err
	}

	pOut := ev.Val(out.P)
	mSum := 0.0
	mhSum := 0.0

	eqs := make([]network.Equation, 0, mx.n+2)
	for i := 0; i < mx.n; i++ {
		in, err := mx.In(mx.InletPort(i))
		if err != nil {
			return nil, err
		}
		m := ev.Val(in.M)
		mSum += m
		mhSum += m * ev.Val(in.H)
		eqs = append(eqs, network.Equation{
			Name:     fmt.Sprintf("%s.p_%s", mx.Name(), mx.InletPort(i)),
			Residual: ev.Val(in.P) - pOut,
			Scale:    math.Max(1e5, math.Abs(pOut)),
		})
	}

	eqs = append(eqs,
		network.Equation{
			Name:     mx.Name() + ".mass",
			Residual: ev.Val(out.M) - mSum,
			Scale:    math.Max(1, math.Abs(mSum)),
		},
		network.Equation{
			Name:     mx.Name() + ".energy",
			Residual: ev.Val(out.M)*ev.Val(out.H) - mhSum,
			Scale:    math.Max(1e6, math.Abs(mhSum)),
		},
	)
	return eqs, nil
}
