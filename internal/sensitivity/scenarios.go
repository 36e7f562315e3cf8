package sensitivity

import (
	"context"
	"fmt"

	"budget-impact/internal/model"
)

// Override sets one parameter to a fixed value.
type Override struct {
	Parameter string
	Value     float64
}

// Scenario is a named set of overrides applied together to the base case.
type Scenario struct {
	Name      string
	Overrides []Override
}

type ScenarioResult struct {
	Name         string
	TotalImpact  float64
	FinalBalance float64
}

// RunScenarios projects each scenario on its own clone of base. The base case
// itself is reported first under the name "base".
func RunScenarios(ctx context.Context, r Runner, modelID model.ModelID, base *model.Inputs, scenarios []Scenario) ([]ScenarioResult, error) {
	type compiled struct {
		locs []Locator
		vals []float64
	}
	plans := make([]compiled, len(scenarios))
	for i, sc := range scenarios {
		for _, o := range sc.Overrides {
			loc, err := ParseLocator(o.Parameter)
			if err != nil {
				return nil, err
			}
			if err := loc.Check(base); err != nil {
				return nil, err
			}
			plans[i].locs = append(plans[i].locs, loc)
			plans[i].vals = append(plans[i].vals, o.Value)
		}
	}

	baseRes, err := r.Run(modelID, base)
	if err != nil {
		return nil, fmt.Errorf("base case: %w", err)
	}
	out := make([]ScenarioResult, 0, len(scenarios)+1)
	out = append(out, ScenarioResult{Name: "base", TotalImpact: baseRes.TotalImpact, FinalBalance: baseRes.FinalBalance})

	for i, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in := base.Clone()
		for j, loc := range plans[i].locs {
			if err := loc.Apply(in, plans[i].vals[j]); err != nil {
				return nil, err
			}
		}
		res, err := r.Run(modelID, in)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		out = append(out, ScenarioResult{Name: sc.Name, TotalImpact: res.TotalImpact, FinalBalance: res.FinalBalance})
	}
	return out, nil
}
