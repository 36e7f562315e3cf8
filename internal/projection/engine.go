package projection

import (
	"fmt"

	"budget-impact/internal/model"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run validates in and projects both scenarios over the horizon.
// modelID is carried into the result as a label only.
func (e *Engine) Run(modelID model.ModelID, in *model.Inputs) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("validate inputs: %w", err)
	}

	costCurrent := AverageCostPerPeriod(in, in.SharesCurrent, in.CoverageCurrent)
	costNew := AverageCostPerPeriod(in, in.SharesNew, in.CoverageNew)

	table := make([]Row, 0, in.Horizon)
	balance := in.InitialBalance
	total := 0.0

	for t := 0; t < in.Horizon; t++ {
		n := in.Population[t]
		aggCurrent := costCurrent[t] * n
		aggNew := costNew[t] * n
		impact := aggNew - aggCurrent
		total += impact

		// Strict fold: each period starts from the previous balance.
		balance = balance + in.BudgetInflow[t] - in.OtherExpenses[t] - aggNew

		table = append(table, Row{
			Period: t + 1,

			Population:      n,
			CoverageCurrent: in.CoverageCurrent[t],
			CoverageNew:     in.CoverageNew[t],

			CostPerPatientCurrent: costCurrent[t],
			CostPerPatientNew:     costNew[t],

			AggregateCurrent: aggCurrent,
			AggregateNew:     aggNew,

			Impact:  impact,
			Balance: balance,
		})
	}

	return &Result{
		ModelID:      modelID,
		CaseName:     in.CaseName,
		Table:        table,
		TotalImpact:  total,
		FinalBalance: balance,
	}, nil
}
