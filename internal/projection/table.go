package projection

import "budget-impact/internal/model"

// Row is one period of projection output.
// This is the primary artifact consumed by reports and the API.
type Row struct {
	// Period is 1-based.
	Period int

	Population      float64
	CoverageCurrent float64
	CoverageNew     float64

	CostPerPatientCurrent float64
	CostPerPatientNew     float64

	AggregateCurrent float64
	AggregateNew     float64

	// Impact is AggregateNew - AggregateCurrent.
	Impact float64
	// Balance is the running budget balance after this period.
	Balance float64
}

type Result struct {
	ModelID  model.ModelID
	CaseName string
	Table    []Row

	TotalImpact  float64
	FinalBalance float64
}
