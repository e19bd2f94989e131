package network

// Equation is one named residual. An equation is satisfied when
// |Residual|/Scale is small; scales keep pressure (1e5 Pa) and enthalpy
// (1e5 J/kg) residuals comparable to mass (1 kg/s) residuals.
type Equation struct {
	Name     string
	Residual float64
	Scale    float64
}

// Scaled returns Residual/Scale with a unit fallback for zero scales.
func (e Equation) Scaled() float64 {
	if e.Scale == 0 {
		return e.Residual
	}
	return e.Residual / e.Scale
}
