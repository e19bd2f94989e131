package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thloop/correl"
	"thloop/props"
)

// stubComp is a minimal component for exercising the network plumbing.
type stubComp struct {
	Base
	eqs func(ev *Eval) ([]Equation, error)
}

func newStub(name string, eqs func(ev *Eval) ([]Equation, error)) *stubComp {
	return &stubComp{Base: NewBase(name), eqs: eqs}
}

func (s *stubComp) Equations(ev *Eval) ([]Equation, error) {
	if s.eqs == nil {
		return nil, nil
	}
	return s.eqs(ev)
}

func TestDuplicateConnectionName(t *testing.T) {
	n := New(props.NewWater(64))
	_, err := n.NewConnection("c1", 1, 1e6, 5e5)
	require.NoError(t, err)
	_, err = n.NewConnection("c1", 1, 1e6, 5e5)
	assert.Error(t, err)
}

func TestCheckDOFImbalance(t *testing.T) {
	n := New(props.NewWater(64))
	c, err := n.NewConnection("c1", 1, 1e6, 5e5)
	require.NoError(t, err)

	// 3 unknowns, 1 equation.
	n.Add(newStub("s", func(ev *Eval) ([]Equation, error) {
		return []Equation{{Name: "s.only", Residual: ev.Val(c.M) - 1, Scale: 1}}, nil
	}))

	err = n.CheckDOF(correl.ModelHEM)
	var dof *DegreesOfFreedomError
	require.ErrorAs(t, err, &dof)
	assert.Equal(t, 3, dof.Unknowns)
	assert.Equal(t, 1, dof.Equations)
}

func TestFixedVariableLeavesUnknowns(t *testing.T) {
	n := New(props.NewWater(64))
	c, err := n.NewConnection("c1", 1, 1e6, 5e5)
	require.NoError(t, err)

	assert.Len(t, n.FreeVariables(), 3)
	c.P.Fix(1e6)
	c.H.Fix(5e5)
	assert.Len(t, n.FreeVariables(), 1)
	c.P.Unfix()
	assert.Len(t, n.FreeVariables(), 2)
}

func TestResidualOrderIsStable(t *testing.T) {
	n := New(props.NewWater(64))
	c, err := n.NewConnection("c1", 1, 1e6, 5e5)
	require.NoError(t, err)

	mk := func(name string) *stubComp {
		return newStub(name, func(ev *Eval) ([]Equation, error) {
			return []Equation{{Name: name + ".eq", Residual: 0, Scale: 1}}, nil
		})
	}
	n.Add(mk("a"))
	n.Add(mk("b"))
	n.AddTarget(Target{Conn: c, Quantity: QuantityPressure, Value: 1e6})

	eqs, err := n.Residuals(n.Eval(n.CurrentState(), correl.ModelHEM))
	require.NoError(t, err)
	require.Len(t, eqs, 3)
	assert.Equal(t, "a.eq", eqs[0].Name)
	assert.Equal(t, "b.eq", eqs[1].Name)
	assert.Equal(t, "target.c1.p", eqs[2].Name)
}

func TestEvalReadsFromPrivateState(t *testing.T) {
	n := New(props.NewWater(64))
	c, err := n.NewConnection("c1", 2, 1e6, 5e5)
	require.NoError(t, err)

	s := n.CurrentState()
	s[c.M.Slot()] = 7
	ev := n.Eval(s, correl.ModelHEM)
	assert.Equal(t, 7.0, ev.Val(c.M))
	// The committed value is untouched.
	assert.Equal(t, 2.0, c.M.Value())

	n.CommitState(s)
	assert.Equal(t, 7.0, c.M.Value())
}

func TestVariableBoundsClip(t *testing.T) {
	n := New(props.NewWater(64))
	c, err := n.NewConnection("c1", 1, 1e6, 5e5)
	require.NoError(t, err)

	c.P.Set(1e12) // way above the property envelope
	assert.Equal(t, props.PMax, c.P.Value())
	c.P.Set(-5)
	assert.Equal(t, 1e3, c.P.Value())
}

func TestTargetEquations(t *testing.T) {
	w := props.NewWater(64)
	n := New(w)
	hMix, err := w.HPX(7e6, 0.5)
	require.NoError(t, err)
	c, err := n.NewConnection("c1", 10, 7e6, hMix)
	require.NoError(t, err)

	n.AddTarget(Target{Conn: c, Quantity: QuantityQuality, Value: 0.5})
	n.AddTarget(Target{Conn: c, Quantity: QuantityMassFlow, Value: 10})

	eqs, err := n.Residuals(n.Eval(n.CurrentState(), correl.ModelHEM))
	require.NoError(t, err)
	require.Len(t, eqs, 2)
	assert.InDelta(t, 0, eqs[0].Scaled(), 1e-9)
	assert.InDelta(t, 0, eqs[1].Scaled(), 1e-12)
}

func TestReadState(t *testing.T) {
	w := props.NewWater(64)
	n := New(w)
	hMix, err := w.HPX(7e6, 0.3)
	require.NoError(t, err)
	c, err := n.NewConnection("core_out", 150, 7e6, hMix)
	require.NoError(t, err)

	cs, err := n.ReadState(c)
	require.NoError(t, err)
	assert.Equal(t, "core_out", cs.Name)
	assert.Equal(t, 150.0, cs.M)
	assert.InDelta(t, 0.3, cs.X, 1e-9)
	assert.Equal(t, "two-phase", cs.Phase)
	assert.Greater(t, cs.Alpha, cs.X) // HEM void leads quality
	ts, err := w.TSat(7e6)
	require.NoError(t, err)
	assert.InDelta(t, ts, cs.T, 1e-9)
}

func TestSummaryListsConnections(t *testing.T) {
	w := props.NewWater(64)
	n := New(w)
	_, err := n.NewConnection("c1", 1, 1e6, 5e5)
	require.NoError(t, err)
	_, err = n.NewConnection("c2", 1, 1e6, 5e5)
	require.NoError(t, err)

	s := n.Summary()
	assert.Contains(t, s, "c1")
	assert.Contains(t, s, "c2")
}
