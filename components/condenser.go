package components

import (
	"math"

	"thloop/network"
)

// Condenser rejects heat down to a prescribed outlet quality (0 = saturated
// liquid) at a fixed hydraulic pressure drop. Optionally it also fixes the
// outlet pressure, which is how a condenser usually anchors loop pressure.
type Condenser struct {
	network.Base

	Dp   float64 // pressure drop across the condenser [Pa]
	XOut float64 // outlet quality target

	fixPOut bool
	pOut    float64
}

// NewCondenser creates a condenser with outlet quality xOut and pressure
// drop dp.
func NewCondenser(name string, xOut, dp float64) *Condenser {
	return &Condenser{Base: network.NewBase(name), XOut: xOut, Dp: dp}
}

// FixOutletPressure anchors the condenser outlet pressure to pOut [Pa].
// The Dp parameter then determines the inlet pressure instead.
func (c *Condenser) FixOutletPressure(pOut float64) *Condenser {
	c.fixPOut = true
	c.pOut = pOut
	return c
}

func (c *Condenser) Equations(ev *network.Eval) ([]network.Equation, error) {
	in, err := c.In("in")
	if err != nil {
		return nil, err
	}
	out, err := c.Out("out")
	if err != nil {
		return nil, err
	}

	m := ev.Val(in.M)
	pIn := ev.Val(in.P)
	pOut := ev.Val(out.P)

	var pEq network.Equation
	if c.fixPOut {
		pEq = network.Equation{
			Name:     c.Name() + ".p_out",
			Residual: pOut - c.pOut,
			Scale:    math.Max(1e5, math.Abs(c.pOut)),
		}
	} else {
		pEq = network.Equation{
			Name:     c.Name() + ".dp",
			Residual: (pIn - pOut) - c.Dp,
			Scale:    math.Max(1e5, math.Abs(pIn)),
		}
	}

	hTarget, err := ev.Props.HPX(pOut, c.XOut)
	if err != nil {
		return nil, err
	}

	return []network.Equation{
		{
			Name:     c.Name() + ".mass",
			Residual: ev.Val(out.M) - m,
			Scale:    math.Max(1, math.Abs(m)),
		},
		pEq,
		{
			Name:     c.Name() + ".h_out",
			Residual: ev.Val(out.H) - hTarget,
			Scale:    math.Max(1e5, math.Abs(hTarget)),
		},
	}, nil
}

// HeatRejected is the heat removed from the fluid at the committed network
// state [W].
func (c *Condenser) HeatRejected() float64 {
	in, err := c.In("in")
	if err != nil {
		return 0
	}
	out, err := c.Out("out")
	if err != nil {
		return 0
	}
	return in.M.Value() * (in.H.Value() - out.H.Value())
}
