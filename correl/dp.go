package correl

import (
	"math"

	"thloop/props"
)

// Model selects the two-phase friction correlation of a component.
type Model int

const (
	// ModelDefault defers to the solve-wide default (HEM unless overridden).
	ModelDefault Model = iota
	// ModelHEM treats the mixture as a single pseudo-fluid with
	// quality-weighted properties.
	ModelHEM
	// ModelChisholm scales the liquid-alone gradient by a
	// Lockhart-Martinelli multiplier with Chisholm's C coefficient.
	ModelChisholm
)

func (m Model) String() string {
	switch m {
	case ModelHEM:
		return "hem"
	case ModelChisholm:
		return "chisholm"
	}
	return "default"
}

// Resolve maps ModelDefault onto the solve-wide default.
func (m Model) Resolve(def Model) Model {
	if m != ModelDefault {
		return m
	}
	if def == ModelDefault {
		return ModelHEM
	}
	return def
}

// Geometry describes a 1D pipe-like flow element.
type Geometry struct {
	L   float64 // length [m]
	D   float64 // hydraulic diameter [m]
	A   float64 // flow area [m2]; 0 means pi*D^2/4
	Eps float64 // absolute roughness [m]
	K   float64 // lumped form loss coefficient [-]
	Dz  float64 // elevation change [m], positive = outlet higher
}

// Area returns the flow area, deriving it from D when not set.
func (g Geometry) Area() float64 {
	if g.A > 0 {
		return g.A
	}
	return math.Pi * g.D * g.D / 4
}

const gravity = 9.80665 // [m/s2]

// Breakdown is a pressure drop split by mechanism. All terms in Pa,
// positive in the flow direction (a drop).
type Breakdown struct {
	Friction float64
	Form     float64
	Gravity  float64
	Accel    float64
}

// Total is the sum of all contributions.
func (b Breakdown) Total() float64 {
	return b.Friction + b.Form + b.Gravity + b.Accel
}

// FormLoss is the K-loss pressure drop K*G^2/(2 rho).
func FormLoss(mdot, rho, k, area float64) float64 {
	if area <= 0 || rho <= 0 {
		return 0
	}
	g := mdot / area
	return k * g * g / (2 * rho)
}

// GravityDrop is the static head rho*g*dz.
func GravityDrop(rho, dz float64) float64 {
	return rho * gravity * dz
}

// AccelDrop is the momentum-flux change G^2*(1/rhoOut - 1/rhoIn) for a
// constant-area element.
func AccelDrop(mdot, area, rhoIn, rhoOut float64) float64 {
	if area <= 0 || rhoIn <= 0 || rhoOut <= 0 {
		return 0
	}
	g := mdot / area
	return g * g * (1/rhoOut - 1/rhoIn)
}

// hemFriction is the Darcy-Weisbach drop evaluated on homogeneous mixture
// properties. Single-phase states fall out naturally because the mixture
// properties reduce to the phase values.
func hemFriction(mdot float64, geo Geometry, area, rhoMix, muMix float64) float64 {
	if area <= 0 || geo.D <= 0 || geo.L <= 0 || rhoMix <= 0 || muMix <= 0 {
		return 0
	}
	g := mdot / area
	re := math.Abs(g * geo.D / muMix)
	f := FrictionFactor(re, geo.Eps/geo.D)
	return f * (geo.L / geo.D) * g * g / (2 * rhoMix)
}

// phaseAloneFriction is the Darcy drop if only the given phase fraction of
// the flow were present.
func phaseAloneFriction(gPhase float64, geo Geometry, rho, mu float64) float64 {
	if geo.D <= 0 || geo.L <= 0 || rho <= 0 || mu <= 0 {
		return 0
	}
	re := math.Abs(gPhase * geo.D / mu)
	f := FrictionFactor(re, geo.Eps/geo.D)
	return f * (geo.L / geo.D) * gPhase * gPhase / (2 * rho)
}

// chisholmC classifies the liquid/vapor Reynolds numbers into Chisholm's
// empirical coefficient: 20 (tt), 12 (lam liquid / turb vapor),
// 10 (turb liquid / lam vapor), 5 (ll).
func chisholmC(reL, reV float64) float64 {
	lLam := reL < 2000
	vLam := reV < 2000
	switch {
	case !lLam && !vLam:
		return 20
	case lLam && vLam:
		return 5
	case lLam:
		return 12
	default:
		return 10
	}
}

// chisholmFriction computes the two-phase friction drop as
// dp_l + C*sqrt(dp_l*dp_g) + dp_g, the Lockhart-Martinelli form
// phi_l^2 * dp_l expanded so the x=0 and x=1 limits reduce exactly to the
// single-phase (liquid-alone / gas-alone) gradients.
func chisholmFriction(mdot, x float64, geo Geometry, area, rhol, rhov, mul, muv float64) float64 {
	if area <= 0 {
		return 0
	}
	x = math.Max(0, math.Min(1, x))
	g := mdot / area

	gl := g * (1 - x)
	gv := g * x
	reL := math.Abs(gl * geo.D / math.Max(mul, 1e-12))
	reV := math.Abs(gv * geo.D / math.Max(muv, 1e-12))

	dpl := phaseAloneFriction(gl, geo, rhol, mul)
	dpv := phaseAloneFriction(gv, geo, rhov, muv)
	if dpl == 0 || dpv == 0 {
		return dpl + dpv
	}
	c := chisholmC(reL, reV)
	return dpl + c*math.Sqrt(dpl*dpv) + dpv
}

// TwoPhaseFriction returns the frictional pressure drop over the element
// for the given flow conditions and phase properties.
func TwoPhaseFriction(model Model, geo Geometry, mdot, x, rhol, rhov, mul, muv, rhoMix, muMix float64) float64 {
	area := geo.Area()
	if model.Resolve(ModelDefault) == ModelChisholm {
		return chisholmFriction(mdot, x, geo, area, rhol, rhov, mul, muv)
	}
	return hemFriction(mdot, geo, area, rhoMix, muMix)
}

// PipeDrop evaluates the full pressure-drop breakdown of a pipe-like
// element between the given inlet and outlet states. Friction and form
// losses use the mid-point state; the acceleration term uses the
// end-point densities.
func PipeDrop(ev props.Evaluator, model Model, mdot, pIn, hIn, pOut, hOut float64, geo Geometry, includeAccel, includeGravity bool) (Breakdown, error) {
	area := geo.Area()

	pAvg := 0.5 * (pIn + pOut)
	hAvg := 0.5 * (hIn + hOut)

	mid, err := ev.StateAt(pAvg, hAvg)
	if err != nil {
		return Breakdown{}, err
	}

	var b Breakdown
	if model.Resolve(ModelDefault) == ModelChisholm {
		rhol, rhov, err := ev.SatRho(pAvg)
		if err != nil {
			return Breakdown{}, err
		}
		mul, muv, err := ev.SatMu(pAvg)
		if err != nil {
			return Breakdown{}, err
		}
		b.Friction = chisholmFriction(mdot, mid.X, geo, area, rhol, rhov, mul, muv)
	} else {
		b.Friction = hemFriction(mdot, geo, area, mid.Rho, mid.Mu)
	}

	b.Form = FormLoss(mdot, mid.Rho, geo.K, area)

	if includeGravity {
		b.Gravity = GravityDrop(mid.Rho, geo.Dz)
	}

	if includeAccel {
		rhoIn, err := ev.Rho(pIn, hIn)
		if err != nil {
			return Breakdown{}, err
		}
		rhoOut, err := ev.Rho(pOut, hOut)
		if err != nil {
			return Breakdown{}, err
		}
		b.Accel = AccelDrop(mdot, area, rhoIn, rhoOut)
	}

	return b, nil
}
