package solver

import (
	"fmt"

	"thloop/network"
)

// DegreesOfFreedomError is raised by the pre-iteration check; the network
// package owns the type because the check belongs to the topology.
type DegreesOfFreedomError = network.DegreesOfFreedomError

// SingularJacobianError reports that the Newton step could not be computed
// because the Jacobian factorization failed.
type SingularJacobianError struct {
	Iteration int
}

func (e *SingularJacobianError) Error() string {
	return fmt.Sprintf("singular jacobian at iteration %d", e.Iteration)
}

// NonConvergenceError reports that the iteration cap was reached with the
// residual norm still above tolerance.
type NonConvergenceError struct {
	Iterations   int
	ResidualNorm float64
	Worst        []ResidualInfo
}

func (e *NonConvergenceError) Error() string {
	msg := fmt.Sprintf("no convergence after %d iterations, |R|=%.3e", e.Iterations, e.ResidualNorm)
	if len(e.Worst) > 0 {
		msg += fmt.Sprintf(", worst residual %s=%.3e", e.Worst[0].Name, e.Worst[0].Value)
	}
	return msg
}
