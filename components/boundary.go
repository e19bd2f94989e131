package components

import (
	"math"

	"thloop/network"
)

// Source is a boundary component enforcing outlet state values. Each value
// that is set contributes one residual equation; alternatively callers can
// fix the connection variables directly and skip the equations.
type Source struct {
	network.Base

	hasM, hasP, hasH bool
	m, p, h          float64
}

// NewSource creates a boundary source with no enforced values.
func NewSource(name string) *Source {
	return &Source{Base: network.NewBase(name)}
}

// SetMassFlow enforces the outlet mass flow [kg/s].
func (s *Source) SetMassFlow(m float64) *Source {
	s.m, s.hasM = m, true
	return s
}

// SetPressure enforces the outlet pressure [Pa].
func (s *Source) SetPressure(p float64) *Source {
	s.p, s.hasP = p, true
	return s
}

// SetEnthalpy enforces the outlet enthalpy [J/kg].
func (s *Source) SetEnthalpy(h float64) *Source {
	s.h, s.hasH = h, true
	return s
}

func (s *Source) Equations(ev *network.Eval) ([]network.Equation, error) {
	out, err := s.Out("out")
	if err != nil {
		return nil, err
	}
	var eqs []network.Equation
	if s.hasM {
		eqs = append(eqs, network.Equation{
			Name:     s.Name() + ".m_out",
			Residual: ev.Val(out.M) - s.m,
			Scale:    math.Max(1, math.Abs(s.m)),
		})
	}
	if s.hasP {
		eqs = append(eqs, network.Equation{
			Name:     s.Name() + ".p_out",
			Residual: ev.Val(out.P) - s.p,
			Scale:    math.Max(1e5, math.Abs(s.p)),
		})
	}
	if s.hasH {
		eqs = append(eqs, network.Equation{
			Name:     s.Name() + ".h_out",
			Residual: ev.Val(out.H) - s.h,
			Scale:    math.Max(1e5, math.Abs(s.h)),
		})
	}
	return eqs, nil
}

// Sink is a boundary component optionally enforcing inlet pressure and/or
// enthalpy.
type Sink struct {
	network.Base

	hasP, hasH bool
	p, h       float64
}

// NewSink creates a boundary sink with no enforced values.
func NewSink(name string) *Sink {
	return &Sink{Base: network.NewBase(name)}
}

// SetPressure enforces the inlet pressure [Pa].
func (s *Sink) SetPressure(p float64) *Sink {
	s.p, s.hasP = p, true
	return s
}

// SetEnthalpy enforces the inlet enthalpy [J/kg].
func (s *Sink) SetEnthalpy(h float64) *Sink {
	s.h, s.hasH = h, true
	return s
}

func (s *Sink) Equations(ev *network.Eval) ([]network.Equation, error) {
	in, err := s.In("in")
	if err != nil {
		return nil, err
	}
	var eqs []network.Equation
	if s.hasP {
		eqs = append(eqs, network.Equation{
			Name:     s.Name() + ".p_in",
			Residual: ev.Val(in.P) - s.p,
			Scale:    math.Max(1e5, math.Abs(s.p)),
		})
	}
	if s.hasH {
		eqs = append(eqs, network.Equation{
			Name:     s.Name() + ".h_in",
			Residual: ev.Val(in.H) - s.h,
			Scale:    math.Max(1e5, math.Abs(s.h)),
		})
	}
	return eqs, nil
}
