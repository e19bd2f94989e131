package components

import (
	"math"

	"thloop/network"
)

// Separator splits a two-phase inlet into a vapor stream at quality XVap
// and a liquid stream at quality XLiq, all at the inlet pressure. The split
// fraction follows from mass and energy conservation, so carry-under and
// carry-over are expressed through the outlet qualities.
type Separator struct {
	network.Base

	XVap float64 // quality of the vapor outlet, typically close to 1
	XLiq float64 // quality of the liquid outlet, typically 0
}

// NewSeparator creates an ideal separator (XVap=1, XLiq=0).
func NewSeparator(name string) *Separator {
	return &Separator{Base: network.NewBase(name), XVap: 1, XLiq: 0}
}

func (s *Separator) Equations(ev *network.Eval) ([]network.Equation, error) {
	in, err := s.In("in")
	if err != nil {
		return nil, err
	}
	vap, err := s.Out("vap")
	if err != nil {
		return nil, err
	}
	liq, err := s.Out("liq")
	if err != nil {
		return nil, err
	}

	m := ev.Val(in.M)
	pIn := ev.Val(in.P)
	hIn := ev.Val(in.H)

	hVap, err := ev.Props.HPX(pIn, s.XVap)
	if err != nil {
		return nil, err
	}
	hLiq, err := ev.Props.HPX(pIn, s.XLiq)
	if err != nil {
		return nil, err
	}

	mVap := ev.Val(vap.M)
	mLiq := ev.Val(liq.M)

	return []network.Equation{
		{
			Name:     s.Name() + ".p_vap",
			Residual: ev.Val(vap.P) - pIn,
			Scale:    math.Max(1e5, math.Abs(pIn)),
		},
		{
			Name:     s.Name() + ".p_liq",
			Residual: ev.Val(liq.P) - pIn,
			Scale:    math.Max(1e5, math.Abs(pIn)),
		},
		{
			Name:     s.Name() + ".h_vap",
			Residual: ev.Val(vap.H) - hVap,
			Scale:    math.Max(1e5, math.Abs(hVap)),
		},
		{
			Name:     s.Name() + ".h_liq",
			Residual: ev.Val(liq.H) - hLiq,
			Scale:    math.Max(1e5, math.Abs(hLiq)),
		},
		{
			Name:     s.Name() + ".mass",
			Residual: mVap + mLiq - m,
			Scale:    math.Max(1, math.Abs(m)),
		},
		{
			Name:     s.Name() + ".energy",
			Residual: mVap*hVap + mLiq*hLiq - m*hIn,
			Scale:    math.Max(1e6, math.Abs(m*hIn)),
		},
	}, nil
}
