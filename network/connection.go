package network

import "thloop/props"

// Connection is a directed edge between two component ports carrying the
// three primary unknowns: mass flow, pressure and specific enthalpy.
// Derived two-phase quantities are pure functions of (p,h) obtained from
// the property evaluator, never stored.
type Connection struct {
	Name string

	M *Variable // mass flow [kg/s]
	P *Variable // pressure [Pa]
	H *Variable // specific enthalpy [J/kg]
}

// Default variable bounds. Pressure and enthalpy stay inside the property
// envelope so trial points never leave the steam tables.
const (
	mLower = 1e-6
	mUpper = 1e9
	pLower = 1e3
	hLower = 5e3
	hUpper = 4.2e6
)

func newConnection(name string, mGuess, pGuess, hGuess float64) *Connection {
	return &Connection{
		Name: name,
		M:    NewVariable(name+".m", mGuess, mLower, mUpper),
		P:    NewVariable(name+".p", pGuess, pLower, props.PMax),
		H:    NewVariable(name+".h", hGuess, hLower, hUpper),
	}
}

// Guess sets initial values for all three primary variables.
func (c *Connection) Guess(m, p, h float64) {
	c.M.Set(m)
	c.P.Set(p)
	c.H.Set(h)
}

// Variables lists the connection's primary unknowns in (m, p, h) order.
func (c *Connection) Variables() []*Variable {
	return []*Variable{c.M, c.P, c.H}
}
