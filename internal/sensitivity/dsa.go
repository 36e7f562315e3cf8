package sensitivity

import (
	"context"
	"fmt"
	"math"
	"sort"

	"budget-impact/internal/model"
)

// Perturbation is a one-at-a-time range for a single parameter.
type Perturbation struct {
	Parameter string
	Min       float64
	Max       float64
}

// DSARow records the total impact at both ends of a parameter's range.
type DSARow struct {
	Parameter   string
	Base        float64
	ImpactAtMin float64
	ImpactAtMax float64
	// Delta is |ImpactAtMax - ImpactAtMin|.
	Delta float64
}

// RunDSA evaluates each perturbation independently against a fresh clone of base.
//
// Every locator is parsed and checked before the first projection, so an
// unsupported parameter fails the call without partial output. Rows come back
// sorted ascending by Delta; ties keep input order.
func RunDSA(ctx context.Context, r Runner, modelID model.ModelID, base *model.Inputs, perts []Perturbation) ([]DSARow, error) {
	locs := make([]Locator, len(perts))
	for i, p := range perts {
		loc, err := ParseLocator(p.Parameter)
		if err != nil {
			return nil, err
		}
		if err := loc.Check(base); err != nil {
			return nil, err
		}
		locs[i] = loc
	}

	baseRes, err := r.Run(modelID, base)
	if err != nil {
		return nil, fmt.Errorf("base case: %w", err)
	}

	rows := make([]DSARow, 0, len(perts))
	for i, p := range perts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		atMin, err := impactWith(r, modelID, base, locs[i], p.Min)
		if err != nil {
			return nil, fmt.Errorf("%s at min: %w", p.Parameter, err)
		}
		atMax, err := impactWith(r, modelID, base, locs[i], p.Max)
		if err != nil {
			return nil, fmt.Errorf("%s at max: %w", p.Parameter, err)
		}
		rows = append(rows, DSARow{
			Parameter:   p.Parameter,
			Base:        baseRes.TotalImpact,
			ImpactAtMin: atMin,
			ImpactAtMax: atMax,
			Delta:       math.Abs(atMax - atMin),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Delta < rows[j].Delta
	})
	return rows, nil
}

func impactWith(r Runner, modelID model.ModelID, base *model.Inputs, loc Locator, v float64) (float64, error) {
	in := base.Clone()
	if err := loc.Apply(in, v); err != nil {
		return 0, err
	}
	res, err := r.Run(modelID, in)
	if err != nil {
		return 0, err
	}
	return res.TotalImpact, nil
}
