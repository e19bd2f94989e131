package solver

import (
	"runtime"

	"thloop/correl"
)

// Progress is called after every Newton iteration with the iteration
// number, the current scaled residual norm and the applied damping factor.
type Progress func(iter int, norm, damping float64)

// Options controls a Newton solve.
type Options struct {
	MaxIter int     // iteration cap
	Tol     float64 // convergence threshold on the scaled residual norm
	StepTol float64 // convergence threshold on the scaled step norm
	FDEps   float64 // relative finite-difference perturbation
	Damping bool    // enable backtracking line search
	Workers int     // Jacobian workers, <=0 means GOMAXPROCS

	// Friction is the default two-phase friction model for components
	// that do not pick one explicitly.
	Friction correl.Model

	Progress Progress
}

// DefaultOptions returns the solver defaults.
func DefaultOptions() Options {
	return Options{
		MaxIter:  60,
		Tol:      1e-7,
		StepTol:  1e-9,
		FDEps:    1e-6,
		Damping:  true,
		Workers:  runtime.GOMAXPROCS(0),
		Friction: correl.ModelHEM,
	}
}

func (o *Options) normalize() {
	if o.MaxIter <= 0 {
		o.MaxIter = 60
	}
	if o.Tol <= 0 {
		o.Tol = 1e-7
	}
	if o.StepTol <= 0 {
		o.StepTol = 1e-9
	}
	if o.FDEps <= 0 {
		o.FDEps = 1e-6
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
}
