package network

import "fmt"

// DegreesOfFreedomError reports an ill-posed network: the count of free
// unknowns does not match the count of residual equations.
type DegreesOfFreedomError struct {
	Unknowns  int
	Equations int
}

func (e *DegreesOfFreedomError) Error() string {
	return fmt.Sprintf("network: ill-posed system: %d free unknowns vs %d equations (imbalance %+d)",
		e.Unknowns, e.Equations, e.Unknowns-e.Equations)
}
