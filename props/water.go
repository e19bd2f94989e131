package props

import "math"

// Phase classifies a (p,h) state.
type Phase int

const (
	PhaseLiquid Phase = iota
	PhaseTwoPhase
	PhaseVapor
)

func (p Phase) String() string {
	switch p {
	case PhaseLiquid:
		return "liquid"
	case PhaseTwoPhase:
		return "two-phase"
	case PhaseVapor:
		return "vapor"
	}
	return "unknown"
}

// State is the derived property bundle at a (p,h) point. All SI units.
type State struct {
	T     float64 // temperature [K]
	Rho   float64 // mixture density [kg/m3]
	X     float64 // quality [-], clamped to [0,1]
	Alpha float64 // HEM void fraction [-]
	Mu    float64 // dynamic viscosity [Pa s]
	K     float64 // thermal conductivity [W/m/K]
	Cp    float64 // isobaric heat capacity [J/kg/K]
	Sigma float64 // surface tension at saturation [N/m]
	Phase Phase
}

// Evaluator is the water/steam property interface consumed by components
// and correlations. Implementations must be deterministic in (p,h) and
// safe for concurrent use.
type Evaluator interface {
	// Full bundle at (p [Pa], h [J/kg]).
	StateAt(p, h float64) (State, error)

	// Saturation queries at p [Pa].
	TSat(p float64) (float64, error)
	SatH(p float64) (hl, hv float64, err error)
	SatRho(p float64) (rhol, rhov float64, err error)
	SatMu(p float64) (mul, muv float64, err error)
	SatCp(p float64) (cpl, cpv float64, err error)
	SatK(p float64) (kl, kv float64, err error)
	SigmaSat(p float64) (float64, error)
	PSat(t float64) (float64, error)

	// Thermodynamic state helpers.
	Quality(p, h float64) (float64, error)
	VoidFraction(p, h float64) (float64, error)
	Rho(p, h float64) (float64, error)
	Mu(p, h float64) (float64, error)
	T(p, h float64) (float64, error)
	S(p, h float64) (float64, error)
	HPX(p, x float64) (float64, error)
	HPT(p, t float64) (float64, error)
	HPS(p, s float64) (float64, error)
}

var _ Evaluator = (*Water)(nil)

// Supported envelope in SI units.
const (
	PMin = 611.7     // [Pa]
	PMax = 16.529e6  // [Pa], saturation stays below the region 3 boundary
	TMin = tMinK     // [K]
	TMax = tMaxK     // [K]
)

// Water evaluates IAPWS-IF97 water/steam properties with bounded LRU
// memoization. The zero value is not usable; construct with NewWater.
type Water struct {
	cache *Cache

	// Cache key quantization. Inputs are snapped to this grid before
	// evaluation, so cached and uncached results are bit-identical.
	// The defaults are far below any finite-difference step the solver
	// takes, which keeps Jacobian columns exact.
	QuantP float64 // [Pa]
	QuantH float64 // [J/kg]
}

// NewWater creates an evaluator with an LRU cache of the given capacity.
// capacity <= 0 disables caching.
func NewWater(capacity int) *Water {
	return &Water{
		cache:  NewCache(capacity),
		QuantP: 1e-2, // 0.01 Pa
		QuantH: 1e-3, // 0.001 J/kg
	}
}

// NewWaterShared creates an evaluator backed by an existing cache, for
// sharing one process-wide cache across independent solves.
func NewWaterShared(cache *Cache) *Water {
	return &Water{cache: cache, QuantP: 1e-2, QuantH: 1e-3}
}

// CacheStats exposes the underlying cache counters.
func (w *Water) CacheStats() (hits, misses int64, hitRate float64) {
	return w.cache.Stats()
}

// satBundle holds every saturation-line quantity at one pressure.
type satBundle struct {
	ts         float64 // [K]
	hl, hv     float64 // [J/kg]
	rhol, rhov float64 // [kg/m3]
	mul, muv   float64 // [Pa s]
	cpl, cpv   float64 // [J/kg/K]
	kl, kv     float64 // [W/m/K]
	sl, sv     float64 // [J/kg/K]
	sigma      float64 // [N/m]
}

func (w *Water) checkP(p float64) error {
	if math.IsNaN(p) || p < PMin || p > PMax {
		return &DomainError{Quantity: "pressure", Value: p, Min: PMin, Max: PMax}
	}
	return nil
}

// snap returns the quantized representative and its grid index.
func snap(x, step float64) (float64, int64) {
	q := quantize(x, step)
	return float64(q) * step, q
}

// sat computes (or recalls) the saturation bundle at p [Pa].
func (w *Water) sat(p float64) (satBundle, error) {
	if err := w.checkP(p); err != nil {
		return satBundle{}, err
	}
	pq, qi := snap(p, w.QuantP)
	key := cacheKey{kind: keySat, a: qi}
	if v, ok := w.cache.get(key); ok {
		return v.(satBundle), nil
	}

	pm := pq * 1e-6
	ts := tsatK(pm)
	var b satBundle
	b.ts = ts
	b.hl = hPT(regionLiquid, pm, ts) * 1e3
	b.hv = hPT(regionVapor, pm, ts) * 1e3
	b.rhol = 1 / vPT(regionLiquid, pm, ts)
	b.rhov = 1 / vPT(regionVapor, pm, ts)
	b.mul = viscosity(ts, b.rhol)
	b.muv = viscosity(ts, b.rhov)
	b.cpl = cpPT(regionLiquid, pm, ts) * 1e3
	b.cpv = cpPT(regionVapor, pm, ts) * 1e3
	b.kl = conductivity(ts, b.rhol, true)
	b.kv = conductivity(ts, b.rhov, false)
	b.sl = sPT(regionLiquid, pm, ts) * 1e3
	b.sv = sPT(regionVapor, pm, ts) * 1e3
	b.sigma = surfaceTension(ts)

	w.cache.put(key, b)
	return b, nil
}

// StateAt evaluates the full property bundle at (p [Pa], h [J/kg]).
func (w *Water) StateAt(p, h float64) (State, error) {
	if err := w.checkP(p); err != nil {
		return State{}, err
	}
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return State{}, &DomainError{Quantity: "enthalpy", Value: h, Min: math.Inf(-1), Max: math.Inf(1)}
	}
	pq, pi := snap(p, w.QuantP)
	hq, hi := snap(h, w.QuantH)
	key := cacheKey{kind: keyState, a: pi, b: hi}
	if v, ok := w.cache.get(key); ok {
		return v.(State), nil
	}

	st, err := w.evalState(pq, hq)
	if err != nil {
		return State{}, err
	}
	w.cache.put(key, st)
	return st, nil
}

func (w *Water) evalState(p, h float64) (State, error) {
	b, err := w.sat(p)
	if err != nil {
		return State{}, err
	}
	pm := p * 1e-6

	switch {
	case h > b.hl && h < b.hv:
		x := (h - b.hl) / (b.hv - b.hl)
		vl := (1 - x) / b.rhol
		vg := x / b.rhov
		alpha := vg / (vg + vl)
		return State{
			T:     b.ts,
			Rho:   1 / (vl + vg),
			X:     x,
			Alpha: alpha,
			// alpha-weighted mixture transport properties (smooth, bounded)
			Mu:    (1-alpha)*b.mul + alpha*b.muv,
			K:     (1-alpha)*b.kl + alpha*b.kv,
			Cp:    b.cpl, // cp undefined in the dome; saturated-liquid value for correlations
			Sigma: b.sigma,
			Phase: PhaseTwoPhase,
		}, nil

	case h <= b.hl:
		t, ok := tFromPH(regionLiquid, pm, h*1e-3)
		if !ok {
			return State{}, &DomainError{Quantity: "enthalpy", Value: h,
				Min: hPT(regionLiquid, pm, tMinK) * 1e3, Max: b.hv}
		}
		rho := 1 / vPT(regionLiquid, pm, t)
		return State{
			T:     t,
			Rho:   rho,
			X:     0,
			Alpha: 0,
			Mu:    viscosity(t, rho),
			K:     conductivity(t, rho, true),
			Cp:    cpPT(regionLiquid, pm, t) * 1e3,
			Sigma: b.sigma,
			Phase: PhaseLiquid,
		}, nil

	default: // h >= hv
		t, ok := tFromPH(regionVapor, pm, h*1e-3)
		if !ok {
			return State{}, &DomainError{Quantity: "enthalpy", Value: h,
				Min: b.hl, Max: hPT(regionVapor, pm, tMaxK) * 1e3}
		}
		rho := 1 / vPT(regionVapor, pm, t)
		return State{
			T:     t,
			Rho:   rho,
			X:     1,
			Alpha: 1,
			Mu:    viscosity(t, rho),
			K:     conductivity(t, rho, false),
			Cp:    cpPT(regionVapor, pm, t) * 1e3,
			Sigma: b.sigma,
			Phase: PhaseVapor,
		}, nil
	}
}

// TSat returns the saturation temperature [K] at p [Pa].
func (w *Water) TSat(p float64) (float64, error) {
	b, err := w.sat(p)
	if err != nil {
		return 0, err
	}
	return b.ts, nil
}

// PSat returns the saturation pressure [Pa] at t [K].
func (w *Water) PSat(t float64) (float64, error) {
	if math.IsNaN(t) || t < tMinK || t > tReg3 {
		return 0, &DomainError{Quantity: "temperature", Value: t, Min: tMinK, Max: tReg3}
	}
	return psatMPa(t) * 1e6, nil
}

// SatH returns saturated liquid/vapor enthalpies [J/kg] at p [Pa].
func (w *Water) SatH(p float64) (float64, float64, error) {
	b, err := w.sat(p)
	if err != nil {
		return 0, 0, err
	}
	return b.hl, b.hv, nil
}

// SatRho returns saturated liquid/vapor densities [kg/m3].
func (w *Water) SatRho(p float64) (float64, float64, error) {
	b, err := w.sat(p)
	if err != nil {
		return 0, 0, err
	}
	return b.rhol, b.rhov, nil
}

// SatMu returns saturated liquid/vapor viscosities [Pa s].
func (w *Water) SatMu(p float64) (float64, float64, error) {
	b, err := w.sat(p)
	if err != nil {
		return 0, 0, err
	}
	return b.mul, b.muv, nil
}

// SatCp returns saturated liquid/vapor heat capacities [J/kg/K].
func (w *Water) SatCp(p float64) (float64, float64, error) {
	b, err := w.sat(p)
	if err != nil {
		return 0, 0, err
	}
	return b.cpl, b.cpv, nil
}

// SatK returns saturated liquid/vapor conductivities [W/m/K].
func (w *Water) SatK(p float64) (float64, float64, error) {
	b, err := w.sat(p)
	if err != nil {
		return 0, 0, err
	}
	return b.kl, b.kv, nil
}

// SigmaSat returns the surface tension [N/m] at p [Pa].
func (w *Water) SigmaSat(p float64) (float64, error) {
	b, err := w.sat(p)
	if err != nil {
		return 0, err
	}
	return b.sigma, nil
}

// Quality returns the equilibrium quality at (p,h), clamped to [0,1].
func (w *Water) Quality(p, h float64) (float64, error) {
	b, err := w.sat(p)
	if err != nil {
		return 0, err
	}
	if h <= b.hl {
		return 0, nil
	}
	if h >= b.hv {
		return 1, nil
	}
	return (h - b.hl) / (b.hv - b.hl), nil
}

// VoidFraction returns the HEM void fraction at (p,h).
func (w *Water) VoidFraction(p, h float64) (float64, error) {
	st, err := w.StateAt(p, h)
	if err != nil {
		return 0, err
	}
	return st.Alpha, nil
}

// Rho returns the mixture density at (p,h).
func (w *Water) Rho(p, h float64) (float64, error) {
	st, err := w.StateAt(p, h)
	if err != nil {
		return 0, err
	}
	return st.Rho, nil
}

// Mu returns the mixture viscosity at (p,h).
func (w *Water) Mu(p, h float64) (float64, error) {
	st, err := w.StateAt(p, h)
	if err != nil {
		return 0, err
	}
	return st.Mu, nil
}

// T returns the temperature at (p,h).
func (w *Water) T(p, h float64) (float64, error) {
	st, err := w.StateAt(p, h)
	if err != nil {
		return 0, err
	}
	return st.T, nil
}

// S returns the specific entropy [J/kg/K] at (p,h).
func (w *Water) S(p, h float64) (float64, error) {
	b, err := w.sat(p)
	if err != nil {
		return 0, err
	}
	if h > b.hl && h < b.hv {
		x := (h - b.hl) / (b.hv - b.hl)
		return b.sl + x*(b.sv-b.sl), nil
	}
	st, err := w.StateAt(p, h)
	if err != nil {
		return 0, err
	}
	pm := p * 1e-6
	reg := regionLiquid
	if st.Phase == PhaseVapor {
		reg = regionVapor
	}
	return sPT(reg, pm, st.T) * 1e3, nil
}

// HPX returns the enthalpy [J/kg] at pressure p and quality x (clamped).
func (w *Water) HPX(p, x float64) (float64, error) {
	b, err := w.sat(p)
	if err != nil {
		return 0, err
	}
	x = math.Max(0, math.Min(1, x))
	return b.hl + x*(b.hv-b.hl), nil
}

// HPT returns the enthalpy [J/kg] at (p [Pa], t [K]).
func (w *Water) HPT(p, t float64) (float64, error) {
	if err := w.checkP(p); err != nil {
		return 0, err
	}
	if math.IsNaN(t) || t < tMinK || t > tMaxK {
		return 0, &DomainError{Quantity: "temperature", Value: t, Min: tMinK, Max: tMaxK}
	}
	pm := p * 1e-6
	return hPT(regionOf(pm, t), pm, t) * 1e3, nil
}

// HPS returns the enthalpy [J/kg] at pressure p and entropy s [J/kg/K].
func (w *Water) HPS(p, s float64) (float64, error) {
	b, err := w.sat(p)
	if err != nil {
		return 0, err
	}
	if s > b.sl && s < b.sv {
		x := (s - b.sl) / (b.sv - b.sl)
		return b.hl + x*(b.hv-b.hl), nil
	}
	pm := p * 1e-6
	reg := regionLiquid
	if s >= b.sv {
		reg = regionVapor
	}
	t, ok := tFromPS(reg, pm, s*1e-3)
	if !ok {
		return 0, &DomainError{Quantity: "entropy", Value: s,
			Min: sPT(regionLiquid, pm, tMinK) * 1e3, Max: sPT(regionVapor, pm, tMaxK) * 1e3}
	}
	return hPT(reg, pm, t) * 1e3, nil
}
