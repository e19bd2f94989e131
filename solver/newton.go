package solver

import (
	"math"
	"sort"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"thloop/network"
)

const maxHalvings = 14

// Solve runs a damped Newton iteration on the network's free variables
// until the scaled residual norm drops below Options.Tol. On success the
// solved state is committed back to the network; on failure the network
// keeps its pre-solve state.
func Solve(net *network.Network, opts Options) (Result, error) {
	opts.normalize()

	if err := net.CheckDOF(opts.Friction); err != nil {
		return Result{Status: Failed, Message: err.Error()}, err
	}

	vars := net.FreeVariables()
	s := net.CurrentState()

	r, names, err := residualVec(net, s, opts)
	if err != nil {
		return Result{Status: Failed, Message: err.Error()}, err
	}
	norm := infNorm(r)
	log.WithFields(log.Fields{"unknowns": len(vars), "equations": len(r), "norm": norm}).
		Debug("newton start")

	jb := &jacobianBuilder{net: net, vars: vars, friction: opts.Friction, fdEps: opts.FDEps}

	for iter := 0; iter < opts.MaxIter; iter++ {
		if !finite(norm) {
			err := &NonConvergenceError{Iterations: iter, ResidualNorm: norm, Worst: worstOf(names, r)}
			return Result{Status: Failed, Iterations: iter, ResidualNorm: norm,
				Message: "non-finite residual", Worst: err.Worst}, err
		}
		if norm < opts.Tol {
			net.CommitState(s)
			return Result{Status: Converged, Iterations: iter, ResidualNorm: norm}, nil
		}

		jac, err := jb.build(s, r, opts.Workers)
		if err != nil {
			return Result{Status: Failed, Iterations: iter, Message: err.Error()}, err
		}

		dx, err := newtonStep(jac, r, iter)
		if err != nil {
			return Result{Status: Failed, Iterations: iter, ResidualNorm: norm,
				Message: err.Error(), Worst: worstOf(names, r)}, err
		}

		sNew, rNew, lambda, ok := lineSearch(net, vars, s, dx, norm, opts)
		if !ok {
			err := &NonConvergenceError{Iterations: iter + 1, ResidualNorm: norm, Worst: worstOf(names, r)}
			return Result{Status: Failed, Iterations: iter + 1, ResidualNorm: norm,
				Message: "line search stalled", Worst: err.Worst}, err
		}

		stepNorm := 0.0
		for _, v := range vars {
			rel := math.Abs(sNew[v.Slot()]-s[v.Slot()]) / math.Max(1, math.Abs(s[v.Slot()]))
			if rel > stepNorm {
				stepNorm = rel
			}
		}

		s, r = sNew, rNew
		norm = infNorm(r)

		log.WithFields(log.Fields{"iter": iter + 1, "norm": norm, "damping": lambda}).
			Debug("newton iteration")
		if opts.Progress != nil {
			opts.Progress(iter+1, norm, lambda)
		}

		if stepNorm < opts.StepTol {
			net.CommitState(s)
			return Result{Status: Converged, Iterations: iter + 1, ResidualNorm: norm}, nil
		}
	}

	worst := worstOf(names, r)
	err = &NonConvergenceError{Iterations: opts.MaxIter, ResidualNorm: norm, Worst: worst}
	return Result{Status: Diverged, Iterations: opts.MaxIter, ResidualNorm: norm,
		Message: err.Error(), Worst: worst}, err
}

// residualVec assembles the scaled residual vector and equation names at
// state s.
func residualVec(net *network.Network, s network.State, opts Options) ([]float64, []string, error) {
	eqs, err := net.Residuals(net.Eval(s, opts.Friction))
	if err != nil {
		return nil, nil, err
	}
	r := make([]float64, len(eqs))
	names := make([]string, len(eqs))
	for i, eq := range eqs {
		r[i] = eq.Scaled()
		names[i] = eq.Name
	}
	return r, names, nil
}

// newtonStep solves J dx = -r with a dense LU factorization.
func newtonStep(jac *mat.Dense, r []float64, iter int) ([]float64, error) {
	n := len(r)
	rhs := mat.NewVecDense(n, nil)
	for i, ri := range r {
		rhs.SetVec(i, -ri)
	}

	var lu mat.LU
	lu.Factorize(jac)
	dx := mat.NewVecDense(n, nil)
	if err := lu.SolveVecTo(dx, false, rhs); err != nil {
		return nil, &SingularJacobianError{Iteration: iter}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = dx.AtVec(i)
	}
	return out, nil
}

// lineSearch applies the Newton step with backtracking: full step first,
// then halved up to maxHalvings times until the residual norm improves.
// Variable bounds clip each trial point. With damping disabled the full
// step is taken unconditionally (when it evaluates).
func lineSearch(net *network.Network, vars []*network.Variable, s network.State, dx []float64, norm float64, opts Options) (network.State, []float64, float64, bool) {
	lambda := 1.0
	for k := 0; k <= maxHalvings; k++ {
		trial := s.Clone()
		for j, v := range vars {
			trial[v.Slot()] = v.Clip(s[v.Slot()] + lambda*dx[j])
		}
		rNew, _, err := residualVec(net, trial, opts)
		if err == nil {
			newNorm := infNorm(rNew)
			if !opts.Damping || newNorm < norm || newNorm < opts.Tol {
				return trial, rNew, lambda, true
			}
		}
		if !opts.Damping {
			break
		}
		lambda /= 2
	}
	return nil, nil, 0, false
}

func infNorm(r []float64) float64 {
	norm := 0.0
	for _, ri := range r {
		if a := math.Abs(ri); a > norm {
			norm = a
		}
	}
	return norm
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// worstOf returns the three largest scaled residuals, largest first.
func worstOf(names []string, r []float64) []ResidualInfo {
	infos := make([]ResidualInfo, len(r))
	for i := range r {
		infos[i] = ResidualInfo{Name: names[i], Value: r[i]}
	}
	sort.Slice(infos, func(i, j int) bool {
		return math.Abs(infos[i].Value) > math.Abs(infos[j].Value)
	})
	if len(infos) > 3 {
		infos = infos[:3]
	}
	return infos
}
