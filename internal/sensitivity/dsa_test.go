package sensitivity

import (
	"context"
	"testing"

	"budget-impact/internal/model"
	"budget-impact/internal/projection"
	"budget-impact/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDSA(t *testing.T) {
	base := testutil.SwitchInputs()
	rows, err := RunDSA(context.Background(), projection.New(), model.Model1, base, []Perturbation{
		{Parameter: "strategy:Interv:staff_cost", Min: 900, Max: 1100},
		{Parameter: "inputs:budget_inflow:0", Min: 0, Max: 1e6},
		{Parameter: "inputs:coverage_new:0", Min: 0.5, Max: 1},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Ascending by delta.
	assert.Equal(t, "inputs:budget_inflow:0", rows[0].Parameter)
	assert.Equal(t, "strategy:Interv:staff_cost", rows[1].Parameter)
	assert.Equal(t, "inputs:coverage_new:0", rows[2].Parameter)

	for _, r := range rows {
		assert.Equal(t, 40000.0, r.Base)
	}
	assert.Equal(t, 0.0, rows[0].Delta)

	assert.Equal(t, 20000.0, rows[1].ImpactAtMin)
	assert.Equal(t, 60000.0, rows[1].ImpactAtMax)
	assert.Equal(t, 40000.0, rows[1].Delta)

	assert.Equal(t, -15000.0, rows[2].ImpactAtMin)
	assert.Equal(t, 40000.0, rows[2].ImpactAtMax)
	assert.Equal(t, 55000.0, rows[2].Delta)

	// Base case untouched.
	assert.Equal(t, testutil.SwitchInputs(), base)
}

func TestRunDSAEqualBoundsGiveZeroDelta(t *testing.T) {
	rows, err := RunDSA(context.Background(), projection.New(), model.Model2, testutil.MixedInputs(), []Perturbation{
		{Parameter: "strategy:I:procedure_cost", Min: 175.5, Max: 175.5},
		{Parameter: "inputs:coverage_current:1", Min: 0.6, Max: 0.6},
	})
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, 0.0, r.Delta, r.Parameter)
		assert.Equal(t, r.ImpactAtMin, r.ImpactAtMax)
	}
}

func TestRunDSAKeepsInputOrderOnTies(t *testing.T) {
	rows, err := RunDSA(context.Background(), projection.New(), model.Model1, testutil.SwitchInputs(), []Perturbation{
		{Parameter: "inputs:saldo_inicial", Min: -5, Max: 5},
		{Parameter: "inputs:other_expenses:1", Min: 0, Max: 10},
		{Parameter: "inputs:budget_inflow:0", Min: 0, Max: 10},
	})
	require.NoError(t, err)
	names := []string{rows[0].Parameter, rows[1].Parameter, rows[2].Parameter}
	assert.Equal(t, []string{"inputs:saldo_inicial", "inputs:other_expenses:1", "inputs:budget_inflow:0"}, names)
}

func TestRunDSAUnsupportedParameter(t *testing.T) {
	for _, raw := range []string{"inputs:population:0", "strategy:Ghost:staff_cost", "inputs:budget_inflow:9"} {
		rows, err := RunDSA(context.Background(), projection.New(), model.Model1, testutil.SwitchInputs(), []Perturbation{
			{Parameter: "strategy:Comp:staff_cost", Min: 1, Max: 2},
			{Parameter: raw, Min: 0, Max: 1},
		})
		assert.Nil(t, rows)
		var uerr *model.UnsupportedParameterError
		assert.ErrorAs(t, err, &uerr, raw)
	}
}

func TestRunDSAInvalidBase(t *testing.T) {
	base := testutil.SwitchInputs()
	base.Cohorts[0].Weight = 0.5
	_, err := RunDSA(context.Background(), projection.New(), model.Model1, base, nil)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRunDSACancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunDSA(ctx, projection.New(), model.Model1, testutil.SwitchInputs(), []Perturbation{
		{Parameter: "strategy:Comp:staff_cost", Min: 1, Max: 2},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunScenarios(t *testing.T) {
	out, err := RunScenarios(context.Background(), projection.New(), model.Model1, testutil.SwitchInputs(), []Scenario{
		{Name: "cheaper intervention", Overrides: []Override{
			{Parameter: "strategy:Interv:staff_cost", Value: 800},
		}},
		{Name: "funded", Overrides: []Override{
			{Parameter: "inputs:budget_inflow:0", Value: 110000},
			{Parameter: "inputs:budget_inflow:1", Value: 110000},
		}},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, ScenarioResult{Name: "base", TotalImpact: 40000, FinalBalance: -220000}, out[0])
	assert.Equal(t, 0.0, out[1].TotalImpact)
	assert.Equal(t, -180000.0, out[1].FinalBalance)
	assert.Equal(t, 40000.0, out[2].TotalImpact)
	assert.Equal(t, 0.0, out[2].FinalBalance)

	_, err = RunScenarios(context.Background(), projection.New(), model.Model1, testutil.SwitchInputs(), []Scenario{
		{Name: "bad", Overrides: []Override{{Parameter: "inputs:nope", Value: 1}}},
	})
	var uerr *model.UnsupportedParameterError
	assert.ErrorAs(t, err, &uerr)
}
