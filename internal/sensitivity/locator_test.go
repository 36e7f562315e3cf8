package sensitivity

import (
	"testing"

	"budget-impact/internal/model"
	"budget-impact/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		raw  string
		want Locator
	}{
		{"strategy:Comp:staff_cost", Locator{Kind: StrategyCost, Strategy: "Comp", Field: StaffCost}},
		{"estrategia:Comp:costo_procedimientos", Locator{Kind: StrategyCost, Strategy: "Comp", Field: ProcedureCost}},
		{"strategy:Interv:adverse_event_cost", Locator{Kind: StrategyCost, Strategy: "Interv", Field: AdverseEventCost}},
		{"inputs:initial_balance", Locator{Kind: InitialBalance}},
		{"inputs:saldo_inicial", Locator{Kind: InitialBalance}},
		{"inputs:budget_inflow:1", Locator{Kind: SeriesElement, Series: BudgetInflow, Index: 1}},
		{"inputs:otros_gastos_anuales:0", Locator{Kind: SeriesElement, Series: OtherExpenses}},
		{"inputs:cobertura_nuevo:0", Locator{Kind: SeriesElement, Series: CoverageNew}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLocator(tt.raw)
			require.NoError(t, err)
			tt.want.Raw = tt.raw
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocatorRejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"strategy:Comp",
		"strategy::staff_cost",
		"strategy:Comp:name",
		"inputs:horizon",
		"inputs:population:0",
		"inputs:budget_inflow",
		"inputs:budget_inflow:x",
		"inputs:budget_inflow:-1",
		"cohort:General:weight",
	} {
		_, err := ParseLocator(raw)
		var uerr *model.UnsupportedParameterError
		assert.ErrorAs(t, err, &uerr, raw)
	}
}

func TestLocatorKeyFoldsAliases(t *testing.T) {
	pairs := [][2]string{
		{"estrategia:Comp:costo_ts", "strategy:Comp:staff_cost"},
		{"inputs:saldo_inicial", "inputs:initial_balance"},
		{"inputs:presupuesto_anual:1", "inputs:budget_inflow:1"},
	}
	for _, p := range pairs {
		a, err := ParseLocator(p[0])
		require.NoError(t, err)
		b, err := ParseLocator(p[1])
		require.NoError(t, err)
		assert.Equal(t, b.Key(), a.Key(), p[0])
		assert.Equal(t, p[1], a.Key())
	}
}

func TestLocatorCheck(t *testing.T) {
	in := testutil.SwitchInputs()

	loc, err := ParseLocator("strategy:Ghost:staff_cost")
	require.NoError(t, err)
	assert.Error(t, loc.Check(in))

	loc, err = ParseLocator("inputs:coverage_current:2")
	require.NoError(t, err)
	assert.Error(t, loc.Check(in))

	loc, err = ParseLocator("inputs:coverage_current:1")
	require.NoError(t, err)
	assert.NoError(t, loc.Check(in))
}

func TestLocatorApply(t *testing.T) {
	in := testutil.MixedInputs()
	apply := func(raw string, v float64) {
		loc, err := ParseLocator(raw)
		require.NoError(t, err)
		require.NoError(t, loc.Apply(in, v))
	}

	apply("strategy:B:staff_cost", 1)
	apply("strategy:B:procedure_cost", 2)
	apply("strategy:B:adverse_event_cost", 3)
	apply("inputs:initial_balance", 4)
	apply("inputs:budget_inflow:0", 5)
	apply("inputs:other_expenses:1", 6)
	apply("inputs:coverage_current:2", 0.7)
	apply("inputs:coverage_new:0", 0.8)

	b := in.Strategies[1]
	assert.Equal(t, []float64{1, 2, 3}, []float64{b.StaffCost, b.ProcedureCost, b.AdverseEventCost})
	assert.Equal(t, 4.0, in.InitialBalance)
	assert.Equal(t, 5.0, in.BudgetInflow[0])
	assert.Equal(t, 6.0, in.OtherExpenses[1])
	assert.Equal(t, 0.7, in.CoverageCurrent[2])
	assert.Equal(t, 0.8, in.CoverageNew[0])
	assert.Equal(t, 850.0, in.Strategies[0].StaffCost)
}
