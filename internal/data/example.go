package data

import (
	"math"

	"budget-impact/internal/model"
)

// ExampleModel is the variant the built-in example is reported under.
const ExampleModel = model.Model2

// ExampleInputs is the built-in five year case: three coexisting strategies,
// two cohorts, full coverage and a gradual shift towards the intervention.
func ExampleInputs() *model.Inputs {
	const T = 5
	adults, older := "Adults 18-64", "Adults 65+"
	mult := func(o float64) map[string]float64 {
		return map[string]float64{adults: 1.0, older: o}
	}
	in := &model.Inputs{
		CaseName:   "Coexistence, 3 strategies, 2 cohorts",
		Horizon:    T,
		Population: []float64{5000, 5200, 5400, 5600, 5800},
		Cohorts: []model.Cohort{
			{Name: adults, Weight: 0.7},
			{Name: older, Weight: 0.3},
		},
		Strategies: []model.Strategy{
			{Name: "Comparator A", StaffCost: 850, ProcedureCost: 120, AdverseEventCost: 30, CohortMultipliers: mult(1.15)},
			{Name: "Comparator B", StaffCost: 900, ProcedureCost: 130, AdverseEventCost: 35, CohortMultipliers: mult(1.10)},
			{Name: "Intervention", StaffCost: 1100, ProcedureCost: 140, AdverseEventCost: 40, CohortMultipliers: mult(1.05)},
		},
		SharesCurrent:   map[string][]float64{},
		SharesNew:       map[string][]float64{},
		CoverageCurrent: make([]float64, T),
		CoverageNew:     make([]float64, T),
		BudgetInflow:    make([]float64, T),
		OtherExpenses:   make([]float64, T),
	}
	for _, name := range in.StrategyNames() {
		in.SharesCurrent[name] = make([]float64, T)
		in.SharesNew[name] = make([]float64, T)
	}
	for t := 0; t < T; t++ {
		ft := float64(t)
		in.CoverageCurrent[t] = 1
		in.CoverageNew[t] = 1

		in.SharesCurrent["Comparator A"][t] = math.Max(0, 0.6-0.1*ft)
		in.SharesCurrent["Comparator B"][t] = 0.3
		in.SharesCurrent["Intervention"][t] = math.Min(1, 0.1+0.1*ft)

		in.SharesNew["Comparator A"][t] = math.Max(0, 0.3-0.05*ft)
		in.SharesNew["Comparator B"][t] = math.Max(0, 0.2-0.02*ft)
		in.SharesNew["Intervention"][t] = math.Min(1, 0.5+0.07*ft)
	}
	return in
}
