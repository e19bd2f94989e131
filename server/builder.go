package server

import (
	"fmt"
	"math"

	"thloop/components"
	"thloop/correl"
	"thloop/model"
	"thloop/network"
	"thloop/props"
)

// params wraps a ComponentDef parameter map with presence-aware accessors.
type params map[string]float64

func (p params) has(key string) bool { _, ok := p[key]; return ok }

func (p params) get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func (p params) need(key, comp string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("component %s: missing parameter %q", comp, key)
	}
	return v, nil
}

func (p params) geometry(comp string) (correl.Geometry, error) {
	l, err := p.need("length", comp)
	if err != nil {
		return correl.Geometry{}, err
	}
	d, err := p.need("diameter", comp)
	if err != nil {
		return correl.Geometry{}, err
	}
	geo := correl.Geometry{
		L:   l,
		D:   d,
		A:   p.get("area", math.Pi*d*d/4),
		Eps: p.get("roughness", 0),
		K:   p.get("k", 0),
		Dz:  p.get("dz", 0),
	}
	return geo, nil
}

func frictionModel(name string) (correl.Model, error) {
	switch name {
	case "", "default":
		return correl.ModelDefault, nil
	case "hem":
		return correl.ModelHEM, nil
	case "chisholm":
		return correl.ModelChisholm, nil
	}
	return 0, fmt.Errorf("unknown friction model %q", name)
}

func quantityFromString(s string) (network.Quantity, error) {
	switch s {
	case "m":
		return network.QuantityMassFlow, nil
	case "p":
		return network.QuantityPressure, nil
	case "h":
		return network.QuantityEnthalpy, nil
	case "x":
		return network.QuantityQuality, nil
	case "alpha":
		return network.QuantityVoidFraction, nil
	case "T":
		return network.QuantityTemperature, nil
	}
	return 0, fmt.Errorf("unknown target quantity %q", s)
}

// buildComponent instantiates one component from its wire definition.
func buildComponent(def model.ComponentDef) (network.Component, error) {
	p := params(def.Params)
	switch def.Type {
	case "source":
		src := components.NewSource(def.Name)
		if p.has("m") {
			src.SetMassFlow(p["m"])
		}
		if p.has("p") {
			src.SetPressure(p["p"])
		}
		if p.has("h") {
			src.SetEnthalpy(p["h"])
		}
		return src, nil

	case "sink":
		snk := components.NewSink(def.Name)
		if p.has("p") {
			snk.SetPressure(p["p"])
		}
		if p.has("h") {
			snk.SetEnthalpy(p["h"])
		}
		return snk, nil

	case "pipe":
		geo, err := p.geometry(def.Name)
		if err != nil {
			return nil, err
		}
		pipe := components.NewPipe(def.Name, geo)
		pipe.Q = p.get("q", 0)
		pipe.IncludeAccel = p.get("include_accel", 1) != 0
		return pipe, nil

	case "channel":
		geo, err := p.geometry(def.Name)
		if err != nil {
			return nil, err
		}
		ch := components.NewChannel(def.Name, geo)
		ch.KBundle = p.get("k_bundle", 0)
		ch.KGrid = p.get("k_grid", 0)
		ch.NGrids = int(p.get("n_grids", 0))
		ch.IncludeAccel = p.get("include_accel", 1) != 0
		if p.has("alpha_target") {
			ch.SetExitVoidTarget(p["alpha_target"], p.get("q_guess", 1e6))
		} else {
			ch.SetPower(p.get("power", 0))
		}
		return ch, nil

	case "orifice":
		a, err := p.need("area", def.Name)
		if err != nil {
			return nil, err
		}
		var o *components.Orifice
		if p.has("cd") {
			o = components.NewOrificeCd(def.Name, p["cd"], a)
		} else {
			o = components.NewOrificeK(def.Name, p.get("k", 0), a)
		}
		o.Dz = p.get("dz", 0)
		return o, nil

	case "pump":
		eta := p.get("eta", 1)
		if p.has("p_out") {
			return components.NewPumpToPressure(def.Name, p["p_out"], eta), nil
		}
		dp, err := p.need("dp", def.Name)
		if err != nil {
			return nil, err
		}
		return components.NewPumpDeltaP(def.Name, dp, eta), nil

	case "turbine":
		eta := p.get("eta_is", 1)
		if p.has("p_out") {
			return components.NewTurbineToPressure(def.Name, p["p_out"], eta), nil
		}
		pr, err := p.need("pressure_ratio", def.Name)
		if err != nil {
			return nil, err
		}
		return components.NewTurbinePressureRatio(def.Name, pr, eta), nil

	case "heater":
		dp := p.get("dp", 0)
		if p.has("t_out") {
			return components.NewHeaterToTemp(def.Name, p["t_out"], dp), nil
		}
		hOut, err := p.need("h_out", def.Name)
		if err != nil {
			return nil, err
		}
		return components.NewHeaterToEnthalpy(def.Name, hOut, dp), nil

	case "condenser":
		c := components.NewCondenser(def.Name, p.get("x_out", 0), p.get("dp", 0))
		if p.has("p_out") {
			c.FixOutletPressure(p["p_out"])
		}
		return c, nil

	case "separator":
		sep := components.NewSeparator(def.Name)
		sep.XVap = p.get("x_vap", 1)
		sep.XLiq = p.get("x_liq", 0)
		return sep, nil

	case "mixer":
		return components.NewMixer(def.Name, int(p.get("inlets", 2))), nil

	case "area_change":
		aIn, err := p.need("a_in", def.Name)
		if err != nil {
			return nil, err
		}
		aOut, err := p.need("a_out", def.Name)
		if err != nil {
			return nil, err
		}
		ac := components.NewAreaChange(def.Name, aIn, aOut, p.get("k", 0))
		ac.Dz = p.get("dz", 0)
		return ac, nil
	}
	return nil, fmt.Errorf("unknown component type %q", def.Type)
}

// BuildNetwork turns a wire definition into a ready-to-solve network.
func BuildNetwork(def model.NetworkDef, ev props.Evaluator) (*network.Network, error) {
	net := network.New(ev)

	comps := make(map[string]network.Component, len(def.Components))
	for _, cd := range def.Components {
		if _, dup := comps[cd.Name]; dup {
			return nil, fmt.Errorf("duplicate component name %q", cd.Name)
		}
		c, err := buildComponent(cd)
		if err != nil {
			return nil, err
		}
		comps[cd.Name] = c
		net.Add(c)
	}

	for _, cn := range def.Connections {
		src, ok := comps[cn.From]
		if !ok {
			return nil, fmt.Errorf("connection %s: unknown component %q", cn.Name, cn.From)
		}
		dst, ok := comps[cn.To]
		if !ok {
			return nil, fmt.Errorf("connection %s: unknown component %q", cn.Name, cn.To)
		}
		fromPort := cn.FromPort
		if fromPort == "" {
			fromPort = "out"
		}
		toPort := cn.ToPort
		if toPort == "" {
			toPort = "in"
		}
		if _, err := net.Connect(src, fromPort, dst, toPort, cn.Name, cn.MGuess, cn.PGuess, cn.HGuess); err != nil {
			return nil, err
		}
	}

	for _, td := range def.Targets {
		conn, ok := net.Connection(td.Conn)
		if !ok {
			return nil, fmt.Errorf("target: unknown connection %q", td.Conn)
		}
		q, err := quantityFromString(td.Quantity)
		if err != nil {
			return nil, err
		}
		net.AddTarget(network.Target{Conn: conn, Quantity: q, Value: td.Value})
	}

	return net, nil
}
