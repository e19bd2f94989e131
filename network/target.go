package network

import (
	"fmt"
	"math"
)

// Quantity identifies which connection quantity a target pins.
type Quantity int

const (
	QuantityMassFlow Quantity = iota
	QuantityPressure
	QuantityEnthalpy
	QuantityQuality
	QuantityVoidFraction
	QuantityTemperature
)

func (q Quantity) String() string {
	switch q {
	case QuantityMassFlow:
		return "m"
	case QuantityPressure:
		return "p"
	case QuantityEnthalpy:
		return "h"
	case QuantityQuality:
		return "x"
	case QuantityVoidFraction:
		return "alpha"
	case QuantityTemperature:
		return "T"
	}
	return "?"
}

// Target is a boundary/target specification: one residual equation pinning
// a primary or derived quantity of a connection to a value. Primary
// quantities can alternatively be removed from the unknown vector with
// Variable.Fix; targets are for derived quantities and for keeping the
// value an explicit equation.
type Target struct {
	Conn     *Connection
	Quantity Quantity
	Value    float64
}

func (t Target) name() string {
	return fmt.Sprintf("target.%s.%s", t.Conn.Name, t.Quantity)
}

func (t Target) equation(ev *Eval) (Equation, error) {
	p := ev.Val(t.Conn.P)
	h := ev.Val(t.Conn.H)

	var cur, scale float64
	switch t.Quantity {
	case QuantityMassFlow:
		cur, scale = ev.Val(t.Conn.M), math.Max(1, math.Abs(t.Value))
	case QuantityPressure:
		cur, scale = p, math.Max(1e5, math.Abs(t.Value))
	case QuantityEnthalpy:
		cur, scale = h, math.Max(1e5, math.Abs(t.Value))
	case QuantityQuality:
		x, err := ev.Props.Quality(p, h)
		if err != nil {
			return Equation{}, err
		}
		cur, scale = x, math.Max(1e-2, math.Abs(t.Value))
	case QuantityVoidFraction:
		alpha, err := ev.Props.VoidFraction(p, h)
		if err != nil {
			return Equation{}, err
		}
		cur, scale = alpha, math.Max(1e-2, math.Abs(t.Value))
	case QuantityTemperature:
		temp, err := ev.Props.T(p, h)
		if err != nil {
			return Equation{}, err
		}
		cur, scale = temp, math.Max(100, math.Abs(t.Value))
	default:
		return Equation{}, fmt.Errorf("target on %s: unknown quantity %d", t.Conn.Name, t.Quantity)
	}

	return Equation{Name: t.name(), Residual: cur - t.Value, Scale: scale}, nil
}
