package props

import "fmt"

// DomainError reports a property query outside the supported
// pressure/enthalpy/temperature envelope. The evaluator never
// extrapolates; callers get this error instead.
type DomainError struct {
	Quantity string  // which input was out of range
	Value    float64 // the offending value (SI units)
	Min, Max float64 // supported range
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("props: %s=%g outside supported range [%g, %g]",
		e.Quantity, e.Value, e.Min, e.Max)
}
