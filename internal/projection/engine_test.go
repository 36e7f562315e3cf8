package projection_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"budget-impact/internal/model"
	"budget-impact/internal/projection"
	"budget-impact/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSwitchScenario(t *testing.T) {
	res, err := projection.New().Run(model.Model1, testutil.SwitchInputs())
	require.NoError(t, err)
	require.Len(t, res.Table, 2)

	first := res.Table[0]
	assert.Equal(t, 1, first.Period)
	assert.Equal(t, 900.0, first.CostPerPatientCurrent)
	assert.Equal(t, 1100.0, first.CostPerPatientNew)
	assert.Equal(t, 90000.0, first.AggregateCurrent)
	assert.Equal(t, 110000.0, first.AggregateNew)
	assert.Equal(t, 20000.0, first.Impact)
	assert.Equal(t, -110000.0, first.Balance)

	assert.Equal(t, 40000.0, res.TotalImpact)
	assert.Equal(t, -220000.0, res.FinalBalance)
	assert.Equal(t, model.Model1, res.ModelID)
	assert.Equal(t, "switch", res.CaseName)
}

func TestAverageCostLengthMatchesHorizon(t *testing.T) {
	for _, in := range []*model.Inputs{testutil.SwitchInputs(), testutil.MixedInputs()} {
		got := projection.AverageCostPerPeriod(in, in.SharesNew, in.CoverageNew)
		assert.Len(t, got, in.Horizon)
	}
}

func TestAverageCostBlendsCohortsAndStrategies(t *testing.T) {
	in := testutil.MixedInputs()
	got := projection.AverageCostPerPeriod(in, in.SharesCurrent, in.CoverageCurrent)

	// Period 1 by hand.
	a, b, i := 1000.0, 1065.0, 1280.0
	adults := 0.6*a + 0.3*b + 0.1*i
	older := 0.6*a*1.15 + 0.3*b*1.10 + 0.1*i*1.05
	want := (0.7*adults + 0.3*older) * 0.8
	assert.InDelta(t, want, got[0], 1e-9)
}

func TestAverageCostIgnoresMissingStrategy(t *testing.T) {
	in := testutil.SwitchInputs()
	shares := map[string][]float64{"Interv": {0.5, 1}}
	got := projection.AverageCostPerPeriod(in, shares, []float64{1, 0.5})
	assert.Equal(t, []float64{550, 550}, got)
}

func TestTotalImpactIsSumOfRows(t *testing.T) {
	res, err := projection.New().Run(model.Model3, testutil.MixedInputs())
	require.NoError(t, err)

	sum := 0.0
	for _, r := range res.Table {
		assert.Equal(t, r.AggregateNew-r.AggregateCurrent, r.Impact)
		sum += r.Impact
	}
	assert.Equal(t, sum, res.TotalImpact)
}

func TestBalanceIsStrictFold(t *testing.T) {
	in := testutil.MixedInputs()
	res, err := projection.New().Run(model.Model2, in)
	require.NoError(t, err)

	prev := in.InitialBalance
	for i, r := range res.Table {
		want := prev + in.BudgetInflow[i] - in.OtherExpenses[i] - r.AggregateNew
		assert.Equal(t, want, r.Balance, "period %d", r.Period)
		prev = r.Balance
	}
	assert.Equal(t, prev, res.FinalBalance)
}

func TestRunRejectsInvalidInputs(t *testing.T) {
	in := testutil.SwitchInputs()
	in.SharesCurrent["Comp"][0] = 0.5

	res, err := projection.New().Run(model.Model1, in)
	assert.Nil(t, res)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Period)
}

func TestRunReturnsFreshResults(t *testing.T) {
	in := testutil.SwitchInputs()
	e := projection.New()
	r1, err := e.Run(model.Model1, in)
	require.NoError(t, err)
	r2, err := e.Run(model.Model4, in)
	require.NoError(t, err)

	r1.Table[0].Impact = -1
	assert.Equal(t, 20000.0, r2.Table[0].Impact)
	assert.Equal(t, r1.TotalImpact, r2.TotalImpact)
	assert.Equal(t, model.Model4, r2.ModelID)
}

func TestWriteTableCSV(t *testing.T) {
	res, err := projection.New().Run(model.Model1, testutil.SwitchInputs())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, projection.WriteTableCSV(path, res.Table))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, projection.TableHeader, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "20000.000000", records[1][8])
	assert.Equal(t, "-220000.000000", records[2][9])
}
