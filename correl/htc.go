package correl

import "math"

// DittusBoelter is the single-phase turbulent internal-convection heat
// transfer coefficient [W/m2/K]. n is ~0.4 for heating, ~0.3 for cooling.
// Below the laminar limit the constant-wall-temperature Nusselt number
// 3.66 is used. Post-processing helper only; never part of a residual.
func DittusBoelter(massFlux, d, mu, cp, k, n float64) float64 {
	if d <= 0 || mu <= 0 || k <= 0 || cp <= 0 {
		return 0
	}
	re := math.Abs(massFlux * d / mu)
	pr := cp * mu / k
	nu := 3.66
	if re >= 2300 {
		nu = 0.023 * math.Pow(re, 0.8) * math.Pow(pr, n)
	}
	return nu * k / d
}
