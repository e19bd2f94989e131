package network

import (
	"fmt"
	"strings"

	"thloop/correl"
	"thloop/props"
)

// Network owns the authoritative collection of connections, components and
// boundary/target specifications, plus the state arena backing every
// variable. It assembles the global residual vector in stable registration
// order; it does not iterate — that is the solver's job.
type Network struct {
	Props props.Evaluator

	components  []Component
	connections []*Connection
	connByName  map[string]*Connection
	targets     []Target

	state State
}

// New creates an empty network over the given property evaluator.
func New(ev props.Evaluator) *Network {
	return &Network{
		Props:      ev,
		connByName: make(map[string]*Connection),
	}
}

func (n *Network) register(v *Variable) {
	v.owner = n
	v.idx = len(n.state)
	n.state = append(n.state, v.Clip(v.init))
}

// NewConnection creates and registers a connection with initial guesses
// for (m, p, h). Connection names must be unique.
func (n *Network) NewConnection(name string, mGuess, pGuess, hGuess float64) (*Connection, error) {
	if _, ok := n.connByName[name]; ok {
		return nil, fmt.Errorf("network: connection %q already exists", name)
	}
	c := newConnection(name, mGuess, pGuess, hGuess)
	for _, v := range c.Variables() {
		n.register(v)
	}
	n.connections = append(n.connections, c)
	n.connByName[name] = c
	return c, nil
}

// Connection looks a connection up by name.
func (n *Network) Connection(name string) (*Connection, bool) {
	c, ok := n.connByName[name]
	return c, ok
}

// Connections lists all connections in registration order.
func (n *Network) Connections() []*Connection { return n.connections }

// Add registers a component and any internal unknowns it owns.
func (n *Network) Add(c Component) {
	if vo, ok := c.(VariableOwner); ok {
		for _, v := range vo.Variables() {
			if v.owner == nil {
				n.register(v)
			}
		}
	}
	n.components = append(n.components, c)
}

// Connect creates a named connection from src's outlet port to dst's inlet
// port, with initial guesses for the primary variables.
func (n *Network) Connect(src Component, srcPort string, dst Component, dstPort, name string, mGuess, pGuess, hGuess float64) (*Connection, error) {
	sp, ok := src.(Ported)
	if !ok {
		return nil, fmt.Errorf("network: component %s has no ports", src.Name())
	}
	dp, ok := dst.(Ported)
	if !ok {
		return nil, fmt.Errorf("network: component %s has no ports", dst.Name())
	}
	c, err := n.NewConnection(name, mGuess, pGuess, hGuess)
	if err != nil {
		return nil, err
	}
	sp.ConnectOutlet(srcPort, c)
	dp.ConnectInlet(dstPort, c)
	return c, nil
}

// AddTarget registers a boundary/target specification.
func (n *Network) AddTarget(t Target) {
	n.targets = append(n.targets, t)
}

// FreeVariables lists all unfixed variables in registration order.
func (n *Network) FreeVariables() []*Variable {
	var out []*Variable
	for _, c := range n.connections {
		for _, v := range c.Variables() {
			if !v.Fixed {
				out = append(out, v)
			}
		}
	}
	for _, comp := range n.components {
		if vo, ok := comp.(VariableOwner); ok {
			for _, v := range vo.Variables() {
				if !v.Fixed {
					out = append(out, v)
				}
			}
		}
	}
	return out
}

// CurrentState returns a copy of the state arena.
func (n *Network) CurrentState() State { return n.state.Clone() }

// CommitState writes a solved state back as the authoritative values.
func (n *Network) CommitState(s State) {
	copy(n.state, s)
}

// Eval builds an evaluation context over the given state vector.
func (n *Network) Eval(s State, friction correl.Model) *Eval {
	return &Eval{Props: n.Props, State: s, Friction: friction}
}

// Residuals assembles the global residual vector at the given evaluation
// point: every component's equations, then every target condition, in
// registration order. Any property-domain failure aborts the assembly.
func (n *Network) Residuals(ev *Eval) ([]Equation, error) {
	var eqs []Equation
	for _, comp := range n.components {
		ce, err := comp.Equations(ev)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", comp.Name(), err)
		}
		eqs = append(eqs, ce...)
	}
	for _, t := range n.targets {
		eq, err := t.equation(ev)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name(), err)
		}
		eqs = append(eqs, eq)
	}
	return eqs, nil
}

// CheckDOF verifies that the number of free unknowns equals the number of
// residual equations at the current state. An imbalanced system fails with
// a DegreesOfFreedomError before any iteration.
func (n *Network) CheckDOF(friction correl.Model) error {
	eqs, err := n.Residuals(n.Eval(n.CurrentState(), friction))
	if err != nil {
		return err
	}
	unknowns := len(n.FreeVariables())
	if unknowns != len(eqs) {
		return &DegreesOfFreedomError{Unknowns: unknowns, Equations: len(eqs)}
	}
	return nil
}

// ConnState is the post-solve readback bundle for one connection: primary
// variables plus derived properties.
type ConnState struct {
	Name  string  `json:"name"`
	M     float64 `json:"m"`
	P     float64 `json:"p"`
	H     float64 `json:"h"`
	X     float64 `json:"x"`
	Alpha float64 `json:"alpha"`
	Rho   float64 `json:"rho"`
	T     float64 `json:"t"`
	Phase string  `json:"phase"`
}

// ReadState returns the connection's primary variables and derived
// properties at the current network state.
func (n *Network) ReadState(c *Connection) (ConnState, error) {
	p := c.P.Value()
	h := c.H.Value()
	st, err := n.Props.StateAt(p, h)
	if err != nil {
		return ConnState{}, fmt.Errorf("connection %s: %w", c.Name, err)
	}
	return ConnState{
		Name:  c.Name,
		M:     c.M.Value(),
		P:     p,
		H:     h,
		X:     st.X,
		Alpha: st.Alpha,
		Rho:   st.Rho,
		T:     st.T,
		Phase: st.Phase.String(),
	}, nil
}

// Summary renders a one-line-per-connection diagnostic dump.
func (n *Network) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "network: %d components, %d connections, %d targets\n",
		len(n.components), len(n.connections), len(n.targets))
	for _, c := range n.connections {
		fixed := func(v *Variable) string {
			if v.Fixed {
				return " (fixed)"
			}
			return ""
		}
		fmt.Fprintf(&b, "  %s: m=%.4g%s p=%.4g%s h=%.4g%s\n",
			c.Name,
			c.M.Value(), fixed(c.M),
			c.P.Value(), fixed(c.P),
			c.H.Value(), fixed(c.H))
	}
	return b.String()
}
