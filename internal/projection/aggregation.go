package projection

import "budget-impact/internal/model"

// AverageCostPerPeriod returns, for each period, the expected cost per member of
// the target population: the cohort-weighted, share-weighted per-patient cost
// scaled by coverage.
//
// Strategies are visited in declaration order so accumulation is deterministic;
// a strategy absent from shares contributes nothing.
func AverageCostPerPeriod(in *model.Inputs, shares map[string][]float64, coverage []float64) []float64 {
	out := make([]float64, in.Horizon)
	for t := 0; t < in.Horizon; t++ {
		total := 0.0
		for _, coh := range in.Cohorts {
			cohortCost := 0.0
			for _, s := range in.Strategies {
				sh, ok := shares[s.Name]
				if !ok {
					continue
				}
				cohortCost += sh[t] * s.PerPatientCostForCohort(coh.Name)
			}
			total += coh.Weight * cohortCost
		}
		out[t] = total * coverage[t]
	}
	return out
}
