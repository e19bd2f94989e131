package network

import (
	"fmt"

	"thloop/correl"
	"thloop/props"
)

// Eval carries everything a component needs to evaluate its residuals at
// one candidate state: the property evaluator, a (possibly private) state
// vector, and the solve-wide default friction model. Components read
// variable values only through Val, never mutate anything.
type Eval struct {
	Props    props.Evaluator
	State    State
	Friction correl.Model
}

// Val reads a variable's value from this evaluation's state vector.
func (ev *Eval) Val(v *Variable) float64 {
	if v.idx >= 0 && v.idx < len(ev.State) {
		return ev.State[v.idx]
	}
	return v.init
}

// Component is a polymorphic network unit contributing a fixed number of
// residual equations (mass, momentum, energy) evaluated from its incident
// connections' current values and its own parameters. Implementations must
// not read or mutate other components' state; all coupling happens through
// shared connections.
type Component interface {
	Name() string
	Equations(ev *Eval) ([]Equation, error)
}

// VariableOwner is implemented by components with internal unknowns
// (e.g. a channel solving for its heat input).
type VariableOwner interface {
	Variables() []*Variable
}

// Ported is implemented by components that accept connections on named
// ports. Base provides it.
type Ported interface {
	ConnectInlet(port string, c *Connection)
	ConnectOutlet(port string, c *Connection)
}

// Base carries the port bookkeeping shared by all components.
type Base struct {
	CompName string
	Inlets   map[string]*Connection
	Outlets  map[string]*Connection

	inletOrder  []string
	outletOrder []string
}

// NewBase names a component.
func NewBase(name string) Base {
	return Base{
		CompName: name,
		Inlets:   make(map[string]*Connection),
		Outlets:  make(map[string]*Connection),
	}
}

func (b *Base) Name() string { return b.CompName }

// ConnectInlet attaches a connection to a named inlet port.
func (b *Base) ConnectInlet(port string, c *Connection) {
	if _, ok := b.Inlets[port]; !ok {
		b.inletOrder = append(b.inletOrder, port)
	}
	b.Inlets[port] = c
}

// ConnectOutlet attaches a connection to a named outlet port.
func (b *Base) ConnectOutlet(port string, c *Connection) {
	if _, ok := b.Outlets[port]; !ok {
		b.outletOrder = append(b.outletOrder, port)
	}
	b.Outlets[port] = c
}

// In returns the connection on a required inlet port.
func (b *Base) In(port string) (*Connection, error) {
	c, ok := b.Inlets[port]
	if !ok {
		return nil, fmt.Errorf("%s: inlet %q not connected", b.CompName, port)
	}
	return c, nil
}

// Out returns the connection on a required outlet port.
func (b *Base) Out(port string) (*Connection, error) {
	c, ok := b.Outlets[port]
	if !ok {
		return nil, fmt.Errorf("%s: outlet %q not connected", b.CompName, port)
	}
	return c, nil
}

// InletPorts lists inlet port names in attach order.
func (b *Base) InletPorts() []string { return b.inletOrder }

// OutletPorts lists outlet port names in attach order.
func (b *Base) OutletPorts() []string { return b.outletOrder }
