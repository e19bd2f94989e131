package components

import (
	"fmt"
	"math"

	"thloop/correl"
	"thloop/network"
)

// AreaChange is an abrupt expansion or contraction. The momentum-flux term
// follows directly from the area ratio; irreversible losses enter through
// a form coefficient K referenced to the inlet velocity head.
type AreaChange struct {
	network.Base

	AIn  float64 // inlet flow area [m2]
	AOut float64 // outlet flow area [m2]
	K    float64 // form loss on the inlet velocity head
	Dz   float64 // elevation change [m]
}

// NewAreaChange creates an area change from aIn to aOut with loss
// coefficient k.
func NewAreaChange(name string, aIn, aOut, k float64) *AreaChange {
	return &AreaChange{Base: network.NewBase(name), AIn: aIn, AOut: aOut, K: k}
}

func (a *AreaChange) Equations(ev *network.Eval) ([]network.Equation, error) {
	in, err := a.In("in")
	if err != nil {
		return nil, err
	}
	out, err := a.Out("out")
	if err != nil {
		return nil, err
	}
	if a.AIn <= 0 || a.AOut <= 0 {
		return nil, fmt.Errorf("%s: flow areas must be positive", a.Name())
	}

	m := ev.Val(in.M)
	pIn := ev.Val(in.P)
	hIn := ev.Val(in.H)
	pOut := ev.Val(out.P)
	hOut := ev.Val(out.H)

	rhoIn, err := ev.Props.Rho(pIn, hIn)
	if err != nil {
		return nil, err
	}
	rhoOut, err := ev.Props.Rho(pOut, hOut)
	if err != nil {
		return nil, err
	}

	dpAcc := m * m * (1/(rhoOut*a.AOut*a.AOut) - 1/(rhoIn*a.AIn*a.AIn))
	dp := dpAcc + correl.FormLoss(m, rhoIn, a.K, a.AIn) + correl.GravityDrop(rhoIn, a.Dz)

	return []network.Equation{
		{
			Name:     a.Name() + ".mass",
			Residual: ev.Val(out.M) - m,
			Scale:    math.Max(1, math.Abs(m)),
		},
		{
			Name:     a.Name() + ".h_isenthalpic",
			Residual: hOut - hIn,
			Scale:    math.Max(1e5, math.Abs(hIn)),
		},
		{
			Name:     a.Name() + ".dp",
			Residual: (pIn - pOut) - dp,
			Scale:    math.Max(1e5, math.Abs(pIn)),
		},
	}, nil
}
