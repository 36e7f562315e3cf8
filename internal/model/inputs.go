package model

import "math"

const (
	// ShareTolerance is the allowed deviation of a period's strategy shares from 1.
	ShareTolerance = 1e-3
	// WeightTolerance is the allowed deviation of the cohort weights from 1.
	WeightTolerance = 1e-6
)

// Inputs is the full case consumed by the projection.
//
// Every per-period sequence has exactly Horizon entries; index 0 is the first year.
// Share trajectories map a strategy name to its market share per period; a
// declared strategy missing from a trajectory has zero share throughout.
type Inputs struct {
	CaseName   string
	Horizon    int
	Population []float64
	Cohorts    []Cohort
	Strategies []Strategy

	SharesCurrent map[string][]float64
	SharesNew     map[string][]float64

	// Coverage is the fraction of the target population actually reached.
	CoverageCurrent []float64
	CoverageNew     []float64

	InitialBalance float64
	BudgetInflow   []float64
	OtherExpenses  []float64
}

// Validate checks the invariants the projection relies on. It never repairs input.
func (in *Inputs) Validate() error {
	if in == nil {
		return invalid("inputs", 0, "inputs are nil")
	}
	T := in.Horizon
	if T < 1 {
		return invalid("horizon", 0, "must be >= 1, got %d", T)
	}

	if !finite(in.InitialBalance) {
		return invalid("initial_balance", 0, "value %v is not finite", in.InitialBalance)
	}

	series := []struct {
		name string
		vals []float64
	}{
		{"population", in.Population},
		{"coverage_current", in.CoverageCurrent},
		{"coverage_new", in.CoverageNew},
		{"budget_inflow", in.BudgetInflow},
		{"other_expenses", in.OtherExpenses},
	}
	for _, s := range series {
		if len(s.vals) != T {
			return invalid(s.name, 0, "expected %d periods, got %d", T, len(s.vals))
		}
		for t, v := range s.vals {
			if !finite(v) {
				return invalid(s.name, t+1, "value %v is not finite", v)
			}
		}
	}

	seen := make(map[string]bool, len(in.Strategies))
	for _, s := range in.Strategies {
		if seen[s.Name] {
			return invalid("strategies", 0, "duplicate strategy %q", s.Name)
		}
		seen[s.Name] = true
		if !finite(s.StaffCost) || !finite(s.ProcedureCost) || !finite(s.AdverseEventCost) {
			return invalid("strategies", 0, "strategy %q has a non-finite cost", s.Name)
		}
	}

	for _, sc := range []struct {
		name   string
		shares map[string][]float64
	}{
		{"shares_current", in.SharesCurrent},
		{"shares_new", in.SharesNew},
	} {
		for name, vals := range sc.shares {
			if !seen[name] {
				return invalid(sc.name, 0, "unknown strategy %q", name)
			}
			if len(vals) != T {
				return invalid(sc.name, 0, "strategy %q: expected %d periods, got %d", name, T, len(vals))
			}
		}
		for t := 0; t < T; t++ {
			sum := in.shareSum(sc.shares, t)
			// Written so a NaN sum fails.
			if !(math.Abs(sum-1) <= ShareTolerance) {
				return invalid(sc.name, t+1, "shares sum to %.6f, want 1", sum)
			}
		}
	}

	w := 0.0
	for _, c := range in.Cohorts {
		w += c.Weight
	}
	if !(math.Abs(w-1) <= WeightTolerance) {
		return invalid("cohorts", 0, "weights sum to %.6f, want 1", w)
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// shareSum adds the period-t shares in strategy declaration order.
func (in *Inputs) shareSum(shares map[string][]float64, t int) float64 {
	sum := 0.0
	for _, s := range in.Strategies {
		if vals, ok := shares[s.Name]; ok && t < len(vals) {
			sum += vals[t]
		}
	}
	return sum
}

// StrategyByName returns a pointer into in.Strategies so callers can override fields.
func (in *Inputs) StrategyByName(name string) (*Strategy, bool) {
	for i := range in.Strategies {
		if in.Strategies[i].Name == name {
			return &in.Strategies[i], true
		}
	}
	return nil, false
}

// StrategyNames returns strategy names in declaration order.
func (in *Inputs) StrategyNames() []string {
	out := make([]string, len(in.Strategies))
	for i, s := range in.Strategies {
		out[i] = s.Name
	}
	return out
}

// Clone returns a deep copy that shares no slices or maps with in.
func (in *Inputs) Clone() *Inputs {
	if in == nil {
		return nil
	}
	out := *in
	out.Population = cloneFloats(in.Population)
	out.CoverageCurrent = cloneFloats(in.CoverageCurrent)
	out.CoverageNew = cloneFloats(in.CoverageNew)
	out.BudgetInflow = cloneFloats(in.BudgetInflow)
	out.OtherExpenses = cloneFloats(in.OtherExpenses)
	out.SharesCurrent = cloneShares(in.SharesCurrent)
	out.SharesNew = cloneShares(in.SharesNew)
	if in.Cohorts != nil {
		out.Cohorts = make([]Cohort, len(in.Cohorts))
		copy(out.Cohorts, in.Cohorts)
	}
	if in.Strategies != nil {
		out.Strategies = make([]Strategy, len(in.Strategies))
		for i, s := range in.Strategies {
			out.Strategies[i] = s.clone()
		}
	}
	return &out
}

func cloneFloats(xs []float64) []float64 {
	if xs == nil {
		return nil
	}
	out := make([]float64, len(xs))
	copy(out, xs)
	return out
}

func cloneShares(m map[string][]float64) map[string][]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string][]float64, len(m))
	for k, v := range m {
		out[k] = cloneFloats(v)
	}
	return out
}
