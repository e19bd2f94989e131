package components

import (
	"math"

	"thloop/correl"
	"thloop/network"
)

// EnergyMode selects how a Channel closes its energy balance. The mode is
// an explicit construction-time choice, never inferred from which inputs
// happen to be set.
type EnergyMode int

const (
	// EnergyFixedPower: heat input Q is a parameter.
	EnergyFixedPower EnergyMode = iota
	// EnergyTargetVoid: Q is a solver unknown and the exit void fraction
	// is pinned to a target by an extra residual.
	EnergyTargetVoid
)

// Channel is a heated (boiling) core channel: heat input plus two-phase
// aware pressure drop with bundle and spacer-grid form losses.
type Channel struct {
	network.Base

	Geo      correl.Geometry
	Friction correl.Model

	// Additional lumped losses on top of Geo.K.
	KBundle float64
	KGrid   float64 // per spacer grid
	NGrids  int

	IncludeAccel bool

	mode        EnergyMode
	alphaTarget float64
	q           *network.Variable
}

// NewChannel creates a channel in fixed-power mode with Q = 0.
func NewChannel(name string, geo correl.Geometry) *Channel {
	c := &Channel{
		Base:         network.NewBase(name),
		Geo:          geo,
		IncludeAccel: true,
		q:            network.NewVariable(name+".Q", 0, -1e12, 1e12),
	}
	c.q.Fix(0)
	return c
}

// SetPower puts the channel in fixed-power mode with heat input qW [W].
func (c *Channel) SetPower(qW float64) {
	c.q.Fix(qW)
	c.mode = EnergyFixedPower
}

// SetExitVoidTarget puts the channel in target-void mode: Q becomes a
// solver unknown starting from qGuess and the exit void fraction is pinned
// to alpha.
func (c *Channel) SetExitVoidTarget(alpha, qGuess float64) {
	c.mode = EnergyTargetVoid
	c.alphaTarget = alpha
	c.q.Set(qGuess)
	c.q.Unfix()
}

// Mode reports the active energy-closure mode.
func (c *Channel) Mode() EnergyMode { return c.mode }

// Power returns the current heat input value [W].
func (c *Channel) Power() float64 { return c.q.Value() }

// Variables exposes the internal heat-input unknown to the network.
func (c *Channel) Variables() []*network.Variable {
	return []*network.Variable{c.q}
}

func (c *Channel) Equations(ev *network.Eval) ([]network.Equation, error) {
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
	hIn := ev.Val(in.H)
	pOut := ev.Val(out.P)
	hOut := ev.Val(out.H)

	eqs := []network.Equation{{
		Name:     c.Name() + ".mass",
		Residual: ev.Val(out.M) - m,
		Scale:    math.Max(1, math.Abs(m)),
	}}

	dh := 0.0
	if math.Abs(m) > 1e-9 {
		dh = ev.Val(c.q) / m
	}
	hTarget := hIn + dh
	eqs = append(eqs, network.Equation{
		Name:     c.Name() + ".energy",
		Residual: hOut - hTarget,
		Scale:    math.Max(1e5, math.Abs(hTarget)),
	})

	geo := c.Geo
	geo.K += c.KBundle + float64(c.NGrids)*c.KGrid

	dp, err := correl.PipeDrop(ev.Props, c.Friction.Resolve(ev.Friction),
		m, pIn, hIn, pOut, hOut, geo, c.IncludeAccel, true)
	if err != nil {
		return nil, err
	}
	eqs = append(eqs, network.Equation{
		Name:     c.Name() + ".dp",
		Residual: (pIn - pOut) - dp.Total(),
		Scale:    math.Max(1e5, math.Abs(pIn)),
	})

	if c.mode == EnergyTargetVoid {
		alpha, err := ev.Props.VoidFraction(pOut, hOut)
		if err != nil {
			return nil, err
		}
		eqs = append(eqs, network.Equation{
			Name:     c.Name() + ".alpha_out",
			Residual: alpha - c.alphaTarget,
			Scale:    math.Max(1e-2, math.Abs(c.alphaTarget)),
		})
	}

	return eqs, nil
}
