package props

import "math"

// IAPWS-IF97 industrial formulation, regions 1, 2 and 4, with the 2008
// viscosity correlation. Only the subcritical envelope is implemented:
// pressures are capped so the saturation temperature stays below the
// region 1/3 boundary (623.15 K) and region 3 is never entered.
//
// Internal units follow the formulation (MPa, K, kJ/kg); the package API
// in water.go converts to SI (Pa, J/kg).

const (
	rGas = 0.461526 // specific gas constant of water [kJ/kg/K]

	tCrit = 647.096  // critical temperature [K]
	pCrit = 22.064   // critical pressure [MPa]
	rhoC  = 322.0    // critical density [kg/m3]
	tMinK = 273.15   // lower temperature bound [K]
	tMaxK = 1073.15  // upper temperature bound [K]
	tReg3 = 623.15   // region 1|3 boundary temperature [K]
	pMinM = 611.7e-6 // lower pressure bound [MPa]
	pMaxM = 16.529   // psat(623.15 K); keeps region 3 out of reach [MPa]
)

// ---------------------------------------------------------------------------
// Region 4: saturation line
// ---------------------------------------------------------------------------

var n4 = [10]float64{
	0.11670521452767e4, -0.72421316703206e6, -0.17073846940092e2,
	0.12020824702470e5, -0.32325550322333e7, 0.14915108613530e2,
	-0.48232657361591e4, 0.40511340542057e6, -0.23855557567849,
	0.65017534844798e3,
}

// psatMPa returns the saturation pressure [MPa] at T [K].
func psatMPa(t float64) float64 {
	theta := t + n4[8]/(t-n4[9])
	a := theta*theta + n4[0]*theta + n4[1]
	b := n4[2]*theta*theta + n4[3]*theta + n4[4]
	c := n4[5]*theta*theta + n4[6]*theta + n4[7]
	base := 2 * c / (-b + math.Sqrt(b*b-4*a*c))
	return base * base * base * base
}

// tsatK returns the saturation temperature [K] at p [MPa].
func tsatK(p float64) float64 {
	beta := math.Sqrt(math.Sqrt(p))
	e := beta*beta + n4[2]*beta + n4[5]
	f := n4[0]*beta*beta + n4[3]*beta + n4[6]
	g := n4[1]*beta*beta + n4[4]*beta + n4[7]
	d := 2 * g / (-f - math.Sqrt(f*f-4*e*g))
	nd := n4[9] + d
	return (nd - math.Sqrt(nd*nd-4*(n4[8]+n4[9]*d))) / 2
}

// ---------------------------------------------------------------------------
// Region 1: compressed liquid
// ---------------------------------------------------------------------------

var i1 = [34]int{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 3, 3, 3,
	4, 4, 4, 5, 8, 8, 21, 23, 29, 30, 31, 32,
}

var j1 = [34]int{
	-2, -1, 0, 1, 2, 3, 4, 5, -9, -7, -1, 0, 1, 3, -3, 0, 1, 3, 17,
	-4, 0, 6, -5, -2, 10, -8, -11, -6, -29, -31, -38, -39, -40, -41,
}

var n1 = [34]float64{
	0.14632971213167, -0.84548187169114, -0.37563603672040e1,
	0.33855169168385e1, -0.95791963387872, 0.15772038513228,
	-0.16616417199501e-1, 0.81214629983568e-3, 0.28319080123804e-3,
	-0.60706301565874e-3, -0.18990068218419e-1, -0.32529748770505e-1,
	-0.21841717175414e-1, -0.52838357969930e-4, -0.47184321073267e-3,
	-0.30001780793026e-3, 0.47661393906987e-4, -0.44141845330846e-5,
	-0.72694996297594e-15, -0.31679644845054e-4, -0.28270797985312e-5,
	-0.85205128120103e-9, -0.22425281908000e-5, -0.65171222895601e-6,
	-0.14341729937924e-12, -0.40516996860117e-6, -0.12734301741641e-8,
	-0.17424871230634e-9, -0.68762131295531e-18, 0.14478307828521e-19,
	0.26335781662795e-22, -0.11947622640071e-22, 0.18228094581404e-23,
	-0.93537087292458e-25,
}

type gibbs struct {
	g, gp, gt, gtt float64
}

func region1(p, t float64) gibbs {
	pi := p / 16.53
	tau := 1386.0 / t
	a := 7.1 - pi
	b := tau - 1.222
	var out gibbs
	for k := 0; k < 34; k++ {
		ai := ipow(a, i1[k])
		bj := ipow(b, j1[k])
		out.g += n1[k] * ai * bj
		out.gp -= n1[k] * float64(i1[k]) * ipow(a, i1[k]-1) * bj
		out.gt += n1[k] * ai * float64(j1[k]) * ipow(b, j1[k]-1)
		out.gtt += n1[k] * ai * float64(j1[k]) * float64(j1[k]-1) * ipow(b, j1[k]-2)
	}
	return out
}

// ---------------------------------------------------------------------------
// Region 2: superheated steam
// ---------------------------------------------------------------------------

var j0 = [9]int{0, 1, -5, -4, -3, -2, -1, 2, 3}

var n0 = [9]float64{
	-0.96927686500217e1, 0.10086655968018e2, -0.56087911283020e-2,
	0.71452738081455e-1, -0.40710498223928, 0.14240819171444e1,
	-0.43839511319450e1, -0.28408632460772, 0.21268463753307e-1,
}

var i2 = [43]int{
	1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 3, 3, 3, 3, 3, 4, 4, 4, 5, 6, 6, 6,
	7, 7, 7, 8, 8, 9, 10, 10, 10, 16, 16, 18, 20, 20, 20, 21, 22, 23,
	24, 24, 24,
}

var j2 = [43]int{
	0, 1, 2, 3, 6, 1, 2, 4, 7, 36, 0, 1, 3, 6, 35, 1, 2, 3, 7, 3, 16,
	35, 0, 11, 25, 8, 36, 13, 4, 10, 14, 29, 50, 57, 20, 35, 48, 21,
	53, 39, 26, 40, 58,
}

var n2 = [43]float64{
	-0.17731742473213e-2, -0.17834862292358e-1, -0.45996013696365e-1,
	-0.57581259083432e-1, -0.50325278727930e-1, -0.33032641670203e-4,
	-0.18948987516315e-3, -0.39392777243355e-2, -0.43797295650573e-1,
	-0.26674547914087e-4, 0.20481737692309e-7, 0.43870667284435e-6,
	-0.32277677238570e-4, -0.15033924542148e-2, -0.40668253562649e-1,
	-0.78847309559367e-9, 0.12790717852285e-7, 0.48225372718507e-6,
	0.22922076337661e-5, -0.16714766451061e-10, -0.21171472321355e-2,
	-0.23895741934104e2, -0.59059564324270e-17, -0.12621808899101e-5,
	-0.38946842435739e-1, 0.11256211360459e-10, -0.82311340897998e1,
	0.19809712802088e-7, 0.10406965210174e-18, -0.10234747095929e-12,
	-0.10018179379511e-8, -0.80882908646985e-10, 0.10693031879409,
	-0.33662250574171, 0.89185845355421e-24, 0.30629316876232e-12,
	-0.42002467698208e-5, -0.59056029685639e-25, 0.37826947613457e-5,
	-0.12768608934681e-14, 0.73087610595061e-28, 0.55414715350778e-16,
	-0.94369707241210e-6,
}

func region2(p, t float64) gibbs {
	pi := p / 1.0
	tau := 540.0 / t
	var out gibbs
	out.g = math.Log(pi)
	out.gp = 1 / pi
	for k := 0; k < 9; k++ {
		tj := ipow(tau, j0[k])
		out.g += n0[k] * tj
		out.gt += n0[k] * float64(j0[k]) * ipow(tau, j0[k]-1)
		out.gtt += n0[k] * float64(j0[k]) * float64(j0[k]-1) * ipow(tau, j0[k]-2)
	}
	b := tau - 0.5
	for k := 0; k < 43; k++ {
		pik := ipow(pi, i2[k])
		bj := ipow(b, j2[k])
		out.g += n2[k] * pik * bj
		out.gp += n2[k] * float64(i2[k]) * ipow(pi, i2[k]-1) * bj
		out.gt += n2[k] * pik * float64(j2[k]) * ipow(b, j2[k]-1)
		out.gtt += n2[k] * pik * float64(j2[k]) * float64(j2[k]-1) * ipow(b, j2[k]-2)
	}
	return out
}

// ipow computes x^n for integer n, including negative exponents.
func ipow(x float64, n int) float64 {
	if n == 0 {
		return 1
	}
	inv := false
	if n < 0 {
		inv = true
		n = -n
	}
	r := 1.0
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			r *= x
		}
		x *= x
	}
	if inv {
		return 1 / r
	}
	return r
}

// ---------------------------------------------------------------------------
// Region dispatch on (p [MPa], T [K])
// ---------------------------------------------------------------------------

type regionID int

const (
	regionLiquid regionID = 1
	regionVapor  regionID = 2
)

func regionOf(p, t float64) regionID {
	if t >= tsatK(p) {
		return regionVapor
	}
	return regionLiquid
}

func stateG(reg regionID, p, t float64) gibbs {
	if reg == regionLiquid {
		return region1(p, t)
	}
	return region2(p, t)
}

// hPT returns specific enthalpy [kJ/kg] in the given region.
func hPT(reg regionID, p, t float64) float64 {
	g := stateG(reg, p, t)
	tau := regionTau(reg, t)
	return rGas * t * tau * g.gt
}

// vPT returns specific volume [m3/kg].
func vPT(reg regionID, p, t float64) float64 {
	g := stateG(reg, p, t)
	pi := regionPi(reg, p)
	return rGas * t / (p * 1e3) * pi * g.gp
}

// cpPT returns isobaric heat capacity [kJ/kg/K].
func cpPT(reg regionID, p, t float64) float64 {
	g := stateG(reg, p, t)
	tau := regionTau(reg, t)
	return -rGas * tau * tau * g.gtt
}

// sPT returns specific entropy [kJ/kg/K].
func sPT(reg regionID, p, t float64) float64 {
	g := stateG(reg, p, t)
	tau := regionTau(reg, t)
	return rGas * (tau*g.gt - g.g)
}

func regionTau(reg regionID, t float64) float64 {
	if reg == regionLiquid {
		return 1386.0 / t
	}
	return 540.0 / t
}

func regionPi(reg regionID, p float64) float64 {
	if reg == regionLiquid {
		return p / 16.53
	}
	return p
}

// ---------------------------------------------------------------------------
// Backward solves: T(p,h) and T(p,s) inside one region
// ---------------------------------------------------------------------------

// invertT finds T in [tLo, tHi] such that f(T) = target. f must be strictly
// increasing in T (true for h and s at fixed p within one region). Newton
// with bisection safeguards.
func invertT(f func(t float64) float64, df func(t float64) float64, target, tLo, tHi float64) (float64, bool) {
	fLo := f(tLo) - target
	fHi := f(tHi) - target
	if fLo > 0 || fHi < 0 {
		return 0, false
	}
	t := 0.5 * (tLo + tHi)
	for i := 0; i < 100; i++ {
		ft := f(t) - target
		if math.Abs(ft) < 1e-9*math.Max(math.Abs(target), 1.0) {
			return t, true
		}
		if ft > 0 {
			tHi = t
		} else {
			tLo = t
		}
		d := df(t)
		var tn float64
		if d > 0 {
			tn = t - ft/d
		}
		if d <= 0 || tn <= tLo || tn >= tHi {
			tn = 0.5 * (tLo + tHi)
		}
		if math.Abs(tn-t) < 1e-10*t {
			return tn, true
		}
		t = tn
	}
	return t, true
}

// tFromPH inverts h(p,T) within one region. p [MPa], h [kJ/kg].
func tFromPH(reg regionID, p, h float64) (float64, bool) {
	ts := tsatK(p)
	tLo, tHi := tMinK, ts
	if reg == regionVapor {
		tLo, tHi = ts, tMaxK
	}
	return invertT(
		func(t float64) float64 { return hPT(reg, p, t) },
		func(t float64) float64 { return cpPT(reg, p, t) },
		h, tLo, tHi,
	)
}

// tFromPS inverts s(p,T) within one region. p [MPa], s [kJ/kg/K].
func tFromPS(reg regionID, p, s float64) (float64, bool) {
	ts := tsatK(p)
	tLo, tHi := tMinK, ts
	if reg == regionVapor {
		tLo, tHi = ts, tMaxK
	}
	return invertT(
		func(t float64) float64 { return sPT(reg, p, t) },
		func(t float64) float64 { return cpPT(reg, p, t) / t },
		s, tLo, tHi,
	)
}

// ---------------------------------------------------------------------------
// Transport properties
// ---------------------------------------------------------------------------

// IAPWS 2008 viscosity correlation (industrial use, without the critical
// enhancement). T [K], rho [kg/m3] -> mu [Pa s].

var muH0 = [4]float64{1.67752, 2.20462, 0.6366564, -0.241605}

var muH1 = [6][7]float64{
	{0.520094, 0.222531, -0.281378, 0.161913, -0.0325372, 0, 0},
	{0.0850895, 0.999115, -0.906851, 0.257399, 0, 0, 0},
	{-1.08374, 1.88797, -0.772479, 0, 0, 0, 0},
	{-0.289555, 1.26613, -0.489837, 0, 0.0698452, 0, -0.00435673},
	{0, 0, -0.257040, 0, 0, 0.00872102, 0},
	{0, 0.120573, 0, 0, 0, 0, -0.000593264},
}

func viscosity(t, rho float64) float64 {
	tb := t / tCrit
	rb := rho / rhoC

	den := 0.0
	for i := 0; i < 4; i++ {
		den += muH0[i] / ipow(tb, i)
	}
	mu0 := 100 * math.Sqrt(tb) / den

	a := 1/tb - 1
	b := rb - 1
	sum := 0.0
	for i := 0; i < 6; i++ {
		inner := 0.0
		for j := 0; j < 7; j++ {
			if muH1[i][j] != 0 {
				inner += muH1[i][j] * ipow(b, j)
			}
		}
		sum += ipow(a, i) * inner
	}
	mu1 := math.Exp(rb * sum)

	return mu0 * mu1 * 1e-6
}

// conductivity is an engineering fit adequate for Reynolds/Prandtl estimates
// in heat-transfer post-processing; it never enters a residual equation.
// T [K], rho [kg/m3] -> k [W/m/K].
func conductivity(t, rho float64, liquid bool) float64 {
	if liquid {
		// quadratic fit to saturated/compressed liquid water
		return -0.5752 + 6.397e-3*t - 8.151e-6*t*t
	}
	// low-density steam fit with a first-order density correction
	return 0.0077 + 5.1e-5*t + 1.3e-4*rho
}

// surfaceTension is the IAPWS 1994 representation. T [K] -> sigma [N/m].
// Above the critical temperature the surface tension vanishes.
func surfaceTension(t float64) float64 {
	if t >= tCrit {
		return 0
	}
	tau := 1 - t/tCrit
	return 235.8e-3 * math.Pow(tau, 1.256) * (1 - 0.625*tau)
}
