package correl

import "math"

// FrictionFactor returns the Darcy friction factor for a circular duct:
// 64/Re below the laminar limit, the Haaland explicit approximation above.
// epsRel is the relative roughness eps/D.
func FrictionFactor(re, epsRel float64) float64 {
	if re <= 0 {
		return 0
	}
	if re < 2300 {
		return 64 / re
	}
	f := -1.8 * math.Log10(math.Pow(epsRel/3.7, 1.11)+6.9/re)
	return 1 / (f * f)
}
