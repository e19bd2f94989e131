package solver

import "fmt"

// Status classifies the outcome of a solve.
type Status int

const (
	Converged Status = iota
	Diverged
	Failed
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Diverged:
		return "diverged"
	default:
		return "failed"
	}
}

// ResidualInfo names one equation and its scaled residual, used to report
// the worst offenders of a non-converged solve.
type ResidualInfo struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Result summarizes a solve.
type Result struct {
	Status       Status
	Iterations   int
	ResidualNorm float64
	Message      string

	// Worst holds the largest scaled residuals, largest first, when the
	// solve did not converge.
	Worst []ResidualInfo
}

func (r Result) String() string {
	return fmt.Sprintf("%s after %d iterations, |R|=%.3e", r.Status, r.Iterations, r.ResidualNorm)
}
