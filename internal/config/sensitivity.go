package config

import (
	"budget-impact/internal/model"
	"budget-impact/internal/sensitivity"
)

// Perturbations returns the DSA ranges of the case. Explicit parameters come
// first, then the generated staff cost ranges.
func (d DSAConfig) Perturbations(in *model.Inputs) []sensitivity.Perturbation {
	out := make([]sensitivity.Perturbation, 0, len(d.Parameters)+len(in.Strategies))
	listed := map[string]bool{}
	for _, p := range d.Parameters {
		out = append(out, sensitivity.Perturbation{Parameter: p.Parameter, Min: p.Min, Max: p.Max})
		listed[parameterKey(p.Parameter)] = true
	}
	if d.StaffCostRange <= 0 {
		return out
	}
	for _, s := range in.Strategies {
		key := "strategy:" + s.Name + ":staff_cost"
		if listed[key] {
			continue
		}
		out = append(out, sensitivity.Perturbation{
			Parameter: key,
			Min:       s.StaffCost * (1 - d.StaffCostRange),
			Max:       s.StaffCost * (1 + d.StaffCostRange),
		})
	}
	return out
}

// parameterKey canonicalises a locator so aliases match. Unparseable
// locators are left as written; Validate or the run reports them.
func parameterKey(raw string) string {
	loc, err := sensitivity.ParseLocator(raw)
	if err != nil {
		return raw
	}
	return loc.Key()
}

// Tornado reports whether DSA rows should be presented largest delta first.
func (d DSAConfig) Tornado() bool { return d.Order == "tornado" }

// Options resolves the PSA section against a case.
func (p PSAConfig) Options(in *model.Inputs) sensitivity.PSAConfig {
	out := sensitivity.PSAConfig{
		Trials:  p.Trials,
		Seed:    p.Seed,
		Workers: p.Workers,
	}
	if out.Trials == 0 {
		out.Trials = DefaultTrials
	}

	listed := map[string]bool{}
	for _, g := range p.CostDistributions {
		out.CostDistributions = append(out.CostDistributions, sensitivity.CostDistribution{
			Parameter: g.Parameter, Shape: g.Shape, Scale: g.Scale,
		})
		listed[parameterKey(g.Parameter)] = true
	}
	if p.GammaShape > 0 {
		for _, s := range in.Strategies {
			for _, f := range []struct {
				field string
				value float64
			}{
				{"staff_cost", s.StaffCost},
				{"procedure_cost", s.ProcedureCost},
				{"adverse_event_cost", s.AdverseEventCost},
			} {
				key := "strategy:" + s.Name + ":" + f.field
				if listed[key] {
					continue
				}
				// Mean k*theta equals the base value; zero costs get theta 1.
				scale := 1.0
				if f.value > 0 {
					scale = f.value / p.GammaShape
				}
				out.CostDistributions = append(out.CostDistributions, sensitivity.CostDistribution{
					Parameter: key, Shape: p.GammaShape, Scale: scale,
				})
			}
		}
	}

	out.ShareConcentrationCurrent = p.ShareConcentration.Current
	out.ShareConcentrationNew = p.ShareConcentration.New
	if p.DefaultConcentration > 0 {
		if len(out.ShareConcentrationCurrent) == 0 {
			out.ShareConcentrationCurrent = UniformConcentration(in, p.DefaultConcentration)
		}
		if len(out.ShareConcentrationNew) == 0 {
			out.ShareConcentrationNew = UniformConcentration(in, p.DefaultConcentration)
		}
	}

	if rr := p.RelativeRisk; rr != nil {
		out.RelativeRisk = &sensitivity.RelativeRisk{
			Mu:     rr.Mu,
			Sigma:  rr.Sigma,
			Target: sensitivity.RRTarget(rr.Target),
		}
	}
	return out
}

// UniformConcentration gives every strategy the same alpha in every period.
func UniformConcentration(in *model.Inputs, alpha float64) []map[string]float64 {
	out := make([]map[string]float64, in.Horizon)
	for t := range out {
		out[t] = make(map[string]float64, len(in.Strategies))
		for _, s := range in.Strategies {
			out[t][s.Name] = alpha
		}
	}
	return out
}
