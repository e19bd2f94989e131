package components

import (
	"fmt"
	"math"

	"thloop/correl"
	"thloop/network"
)

// Orifice is an isenthalpic flow restriction. The pressure drop uses
// either a direct loss coefficient K or a discharge coefficient Cd, both
// against the flow area. Flashing across saturation falls out of the
// isenthalpic enthalpy equation.
type Orifice struct {
	network.Base

	A  float64 // flow area [m2]
	Dz float64 // elevation change [m]

	useCd bool
	k     float64
	cd    float64
}

// NewOrificeK creates an orifice with a K-loss model: dp = K*G^2/(2 rho).
func NewOrificeK(name string, k, area float64) *Orifice {
	return &Orifice{Base: network.NewBase(name), k: k, A: area}
}

// NewOrificeCd creates an orifice with a discharge-coefficient model:
// dp = (m/(Cd*A))^2 / (2 rho).
func NewOrificeCd(name string, cd, area float64) *Orifice {
	return &Orifice{Base: network.NewBase(name), cd: cd, A: area, useCd: true}
}

func (o *Orifice) Equations(ev *network.Eval) ([]network.Equation, error) {
	in, err := o.In("in")
	if err != nil {
		return nil, err
	}
	out, err := o.Out("out")
	if err != nil {
		return nil, err
	}
	if o.A <= 0 {
		return nil, fmt.Errorf("%s: flow area must be positive", o.Name())
	}

	m := ev.Val(in.M)
	pIn := ev.Val(in.P)
	hIn := ev.Val(in.H)

	rho, err := ev.Props.Rho(pIn, hIn)
	if err != nil {
		return nil, err
	}

	var dp float64
	if o.useCd {
		v := m / (rho * o.cd * o.A)
		dp = v * v * rho / 2
	} else {
		dp = correl.FormLoss(m, rho, o.k, o.A)
	}
	dp += correl.GravityDrop(rho, o.Dz)

	return []network.Equation{
		{
			Name:     o.Name() + ".mass",
			Residual: ev.Val(out.M) - m,
			Scale:    math.Max(1, math.Abs(m)),
		},
		{
			Name:     o.Name() + ".h_isenthalpic",
			Residual: ev.Val(out.H) - hIn,
			Scale:    math.Max(1e5, math.Abs(hIn)),
		},
		{
			Name:     o.Name() + ".dp",
			Residual: (pIn - ev.Val(out.P)) - dp,
			Scale:    math.Max(1e5, math.Abs(pIn)),
		},
	}, nil
}
