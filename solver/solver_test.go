package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thloop/components"
	"thloop/correl"
	"thloop/network"
	"thloop/props"
)

type stubComp struct {
	network.Base
	eqs func(ev *network.Eval) ([]network.Equation, error)
}

func (s *stubComp) Equations(ev *network.Eval) ([]network.Equation, error) {
	return s.eqs(ev)
}

// pipeNet builds the canonical test loop segment: one adiabatic pipe with
// fixed inlet pressure/enthalpy and fixed outlet pressure. The mass flow
// that matches the 0.1 MPa drop is the unknown.
func pipeNet(t *testing.T) (*network.Network, *network.Connection, *network.Connection) {
	t.Helper()
	w := props.NewWater(4096)
	net := network.New(w)

	pipe := components.NewPipe("pipe", correl.Geometry{L: 10, D: 0.1, Eps: 4.5e-5})
	net.Add(pipe)

	in, err := net.NewConnection("in", 500, 15e6, 1.2e6)
	require.NoError(t, err)
	out, err := net.NewConnection("out", 500, 14.9e6, 1.2e6)
	require.NoError(t, err)
	pipe.ConnectInlet("in", in)
	pipe.ConnectOutlet("out", out)

	in.P.Fix(15e6)
	in.H.Fix(1.2e6)
	out.P.Fix(14.9e6)

	return net, in, out
}

func TestSolveAdiabaticPipe(t *testing.T) {
	net, in, out := pipeNet(t)

	res, err := Solve(net, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Converged, res.Status)
	assert.Less(t, res.ResidualNorm, DefaultOptions().Tol)
	assert.Greater(t, res.Iterations, 0)
	assert.LessOrEqual(t, res.Iterations, DefaultOptions().MaxIter)

	// Adiabatic: enthalpy carries through unchanged.
	assert.InDelta(t, 1.2e6, out.H.Value(), 1)
	// Mass continuity.
	assert.InEpsilon(t, in.M.Value(), out.M.Value(), 1e-9)
	// The solved flow reproduces the imposed 0.1 MPa drop.
	assert.Greater(t, in.M.Value(), 1.0)
}

func TestSolveIsIdempotent(t *testing.T) {
	net, _, _ := pipeNet(t)

	first, err := Solve(net, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, Converged, first.Status)

	again, err := Solve(net, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Converged, again.Status)
	// The state already satisfies the residuals: no Newton step needed.
	assert.Equal(t, 0, again.Iterations)
}

func TestParallelJacobianMatchesSerial(t *testing.T) {
	serialNet, sin, sout := pipeNet(t)
	parallelNet, pin, pout := pipeNet(t)

	serialOpts := DefaultOptions()
	serialOpts.Workers = 1
	parallelOpts := DefaultOptions()
	parallelOpts.Workers = 8

	rs, err := Solve(serialNet, serialOpts)
	require.NoError(t, err)
	rp, err := Solve(parallelNet, parallelOpts)
	require.NoError(t, err)

	assert.Equal(t, rs.Iterations, rp.Iterations)
	assert.Equal(t, sin.M.Value(), pin.M.Value())
	assert.Equal(t, sout.M.Value(), pout.M.Value())
	assert.Equal(t, sout.H.Value(), pout.H.Value())
}

func TestSolveBoilingChannelToVoidTarget(t *testing.T) {
	w := props.NewWater(4096)
	net := network.New(w)

	ch := components.NewChannel("core", correl.Geometry{L: 3.6, D: 0.012, Dz: 3.6})
	ch.SetExitVoidTarget(0.3, 3e4)
	net.Add(ch)

	in, err := net.NewConnection("in", 0.3, 7e6, 1.2e6)
	require.NoError(t, err)
	out, err := net.NewConnection("out", 0.3, 6.99e6, 1.29e6)
	require.NoError(t, err)
	ch.ConnectInlet("in", in)
	ch.ConnectOutlet("out", out)

	in.M.Fix(0.3)
	in.P.Fix(7e6)
	in.H.Fix(1.2e6)

	res, err := Solve(net, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, Converged, res.Status)

	alpha, err := w.VoidFraction(out.P.Value(), out.H.Value())
	require.NoError(t, err)
	assert.InDelta(t, 0.3, alpha, 1e-6)
	// Boiling the flow up to 30% void takes heat.
	assert.Greater(t, ch.Power(), 0.0)
	// Exit is wetter than saturated liquid but still two-phase.
	x, err := w.Quality(out.P.Value(), out.H.Value())
	require.NoError(t, err)
	assert.Greater(t, x, 0.0)
	assert.Less(t, x, 0.2)
}

func TestSolveDegreesOfFreedomFailure(t *testing.T) {
	net := network.New(props.NewWater(64))
	c, err := net.NewConnection("c", 1, 1e6, 5e5)
	require.NoError(t, err)
	net.Add(&stubComp{Base: network.NewBase("s"), eqs: func(ev *network.Eval) ([]network.Equation, error) {
		return []network.Equation{{Name: "s.eq", Residual: ev.Val(c.M) - 1, Scale: 1}}, nil
	}})

	res, err := Solve(net, DefaultOptions())
	var dof *network.DegreesOfFreedomError
	require.ErrorAs(t, err, &dof)
	assert.Equal(t, Failed, res.Status)
}

func TestSolveSingularJacobian(t *testing.T) {
	net := network.New(props.NewWater(64))
	c, err := net.NewConnection("c", 5, 1e6, 5e5)
	require.NoError(t, err)
	c.H.Fix(5e5)

	// Two equations in (m, p) that both ignore p: a structurally singular
	// Jacobian.
	net.Add(&stubComp{Base: network.NewBase("s"), eqs: func(ev *network.Eval) ([]network.Equation, error) {
		m := ev.Val(c.M)
		return []network.Equation{
			{Name: "s.a", Residual: m - 1, Scale: 1},
			{Name: "s.b", Residual: 2 * (m - 1), Scale: 1},
		}, nil
	}})

	res, err := Solve(net, DefaultOptions())
	require.Error(t, err)
	var sing *SingularJacobianError
	assert.ErrorAs(t, err, &sing)
	assert.Equal(t, Failed, res.Status)
}

func TestSolveReportsWorstResiduals(t *testing.T) {
	net := network.New(props.NewWater(64))
	c, err := net.NewConnection("c", 5, 1e6, 5e5)
	require.NoError(t, err)
	c.P.Fix(1e6)
	c.H.Fix(5e5)

	// m^2 + 1 has no root: the solve cannot converge.
	net.Add(&stubComp{Base: network.NewBase("s"), eqs: func(ev *network.Eval) ([]network.Equation, error) {
		m := ev.Val(c.M)
		return []network.Equation{{Name: "s.noroot", Residual: m*m + 1, Scale: 1}}, nil
	}})

	opts := DefaultOptions()
	opts.MaxIter = 10

	res, err := Solve(net, opts)
	require.Error(t, err)
	var nc *NonConvergenceError
	require.ErrorAs(t, err, &nc)
	assert.NotEqual(t, Converged, res.Status)
	require.NotEmpty(t, res.Worst)
	assert.Equal(t, "s.noroot", res.Worst[0].Name)
}

func TestProgressCallback(t *testing.T) {
	net, _, _ := pipeNet(t)

	var iters []int
	opts := DefaultOptions()
	opts.Progress = func(iter int, norm, damping float64) {
		iters = append(iters, iter)
		assert.Greater(t, damping, 0.0)
	}

	res, err := Solve(net, opts)
	require.NoError(t, err)
	require.Equal(t, Converged, res.Status)
	assert.Len(t, iters, res.Iterations)
	for i, it := range iters {
		assert.Equal(t, i+1, it)
	}
}

func TestFailedSolveKeepsPreSolveState(t *testing.T) {
	net := network.New(props.NewWater(64))
	c, err := net.NewConnection("c", 5, 1e6, 5e5)
	require.NoError(t, err)
	c.P.Fix(1e6)
	c.H.Fix(5e5)
	net.Add(&stubComp{Base: network.NewBase("s"), eqs: func(ev *network.Eval) ([]network.Equation, error) {
		m := ev.Val(c.M)
		return []network.Equation{{Name: "s.noroot", Residual: m*m + 1, Scale: 1}}, nil
	}})

	opts := DefaultOptions()
	opts.MaxIter = 5
	_, err = Solve(net, opts)
	require.Error(t, err)
	assert.Equal(t, 5.0, c.M.Value())
}
