// Package testutil provides fixtures shared by the package tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"

	"budget-impact/internal/model"
)

// ProjectRoot returns the directory holding go.mod.
func ProjectRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("could not get caller info")
	}
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// CasesDir is the directory of bundled YAML case presets.
func CasesDir() string {
	return filepath.Join(ProjectRoot(), "examples", "cases")
}

// SwitchInputs is the two-year case where the whole population moves from
// "Comp" (900/patient) to "Interv" (1100/patient) with no budget flows.
func SwitchInputs() *model.Inputs {
	return &model.Inputs{
		CaseName:   "switch",
		Horizon:    2,
		Population: []float64{100, 100},
		Cohorts:    []model.Cohort{{Name: "General", Weight: 1.0}},
		Strategies: []model.Strategy{
			{Name: "Comp", StaffCost: 800, ProcedureCost: 100},
			{Name: "Interv", StaffCost: 1000, ProcedureCost: 100},
		},
		SharesCurrent:   map[string][]float64{"Comp": {1, 1}, "Interv": {0, 0}},
		SharesNew:       map[string][]float64{"Comp": {0, 0}, "Interv": {1, 1}},
		CoverageCurrent: []float64{1, 1},
		CoverageNew:     []float64{1, 1},
		InitialBalance:  0,
		BudgetInflow:    []float64{0, 0},
		OtherExpenses:   []float64{0, 0},
	}
}

// MixedInputs has three strategies, two cohorts with multipliers and
// non-trivial coverage and budget flows.
func MixedInputs() *model.Inputs {
	cohortMult := func(older float64) map[string]float64 {
		return map[string]float64{"Adults": 1.0, "Older": older}
	}
	return &model.Inputs{
		CaseName:   "mixed",
		Horizon:    3,
		Population: []float64{5000, 5200, 5400},
		Cohorts: []model.Cohort{
			{Name: "Adults", Weight: 0.7},
			{Name: "Older", Weight: 0.3},
		},
		Strategies: []model.Strategy{
			{Name: "A", StaffCost: 850, ProcedureCost: 120, AdverseEventCost: 30, CohortMultipliers: cohortMult(1.15)},
			{Name: "B", StaffCost: 900, ProcedureCost: 130, AdverseEventCost: 35, CohortMultipliers: cohortMult(1.10)},
			{Name: "I", StaffCost: 1100, ProcedureCost: 140, AdverseEventCost: 40, CohortMultipliers: cohortMult(1.05)},
		},
		SharesCurrent: map[string][]float64{
			"A": {0.6, 0.5, 0.4},
			"B": {0.3, 0.3, 0.3},
			"I": {0.1, 0.2, 0.3},
		},
		SharesNew: map[string][]float64{
			"A": {0.3, 0.25, 0.2},
			"B": {0.2, 0.18, 0.16},
			"I": {0.5, 0.57, 0.64},
		},
		CoverageCurrent: []float64{0.8, 0.85, 0.9},
		CoverageNew:     []float64{0.9, 0.95, 1.0},
		InitialBalance:  1_000_000,
		BudgetInflow:    []float64{4_000_000, 4_200_000, 4_400_000},
		OtherExpenses:   []float64{100_000, 110_000, 120_000},
	}
}
