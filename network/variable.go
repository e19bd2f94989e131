package network

import "math"

// State is the arena of scalar values backing all variables of one
// network. Solver workers evaluate residuals against private copies, so
// Jacobian columns can be computed concurrently.
type State []float64

// Clone returns an independent copy.
func (s State) Clone() State {
	out := make(State, len(s))
	copy(out, s)
	return out
}

// Variable is one scalar model unknown, addressed by an index into the
// owning network's state arena. A fixed variable keeps its slot but is
// excluded from the solver's unknown vector.
type Variable struct {
	Name  string
	Fixed bool
	// Bounds. Trial points are clipped into [Lower, Upper].
	Lower, Upper float64

	owner *Network
	idx   int
	init  float64
}

// NewVariable creates an unregistered variable with an initial value and
// bounds. Components pass these to the network through Variables().
func NewVariable(name string, value, lower, upper float64) *Variable {
	return &Variable{Name: name, Lower: lower, Upper: upper, idx: -1, init: value}
}

// Value returns the variable's current value in its network, or the
// initial value if not registered yet.
func (v *Variable) Value() float64 {
	if v.owner != nil {
		return v.owner.state[v.idx]
	}
	return v.init
}

// Set assigns the current value.
func (v *Variable) Set(x float64) {
	if v.owner != nil {
		v.owner.state[v.idx] = v.Clip(x)
		return
	}
	v.init = x
}

// Fix pins the variable at x and removes it from the unknown vector.
func (v *Variable) Fix(x float64) {
	v.Set(x)
	v.Fixed = true
}

// Unfix returns the variable to the unknown vector.
func (v *Variable) Unfix() {
	v.Fixed = false
}

// Clip bounds a trial value into [Lower, Upper].
func (v *Variable) Clip(x float64) float64 {
	return math.Max(v.Lower, math.Min(v.Upper, x))
}

// Slot is the variable's index in the network state arena, -1 if the
// variable has not been registered.
func (v *Variable) Slot() int {
	if v.owner == nil {
		return -1
	}
	return v.idx
}
