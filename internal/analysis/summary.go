package analysis

import (
	"errors"
	"math"
	"sort"

	"budget-impact/internal/sensitivity"

	"github.com/montanaflynn/stats"
)

// Distribution summarizes one PSA output across trials.
type Distribution struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	P025   float64
	P50    float64
	P975   float64
}

// PSASummary is what a report needs from a trial table.
type PSASummary struct {
	Trials       int
	TotalImpact  Distribution
	FinalBalance Distribution
	// ProbPositiveImpact is the share of trials where the new scenario costs more.
	ProbPositiveImpact float64
}

func SummarizePSA(trials []sensitivity.Trial) (PSASummary, error) {
	if len(trials) == 0 {
		return PSASummary{}, errors.New("no trials to summarize")
	}
	impact := make([]float64, len(trials))
	balance := make([]float64, len(trials))
	positive := 0
	for i, tr := range trials {
		impact[i] = tr.TotalImpact
		balance[i] = tr.FinalBalance
		if tr.TotalImpact > 0 {
			positive++
		}
	}

	s := PSASummary{Trials: len(trials)}
	var err error
	if s.TotalImpact, err = Describe(impact); err != nil {
		return PSASummary{}, err
	}
	if s.FinalBalance, err = Describe(balance); err != nil {
		return PSASummary{}, err
	}
	s.ProbPositiveImpact = float64(positive) / float64(len(trials))
	return s, nil
}

// Describe computes mean, sample standard deviation, range and the
// 2.5/50/97.5 percentiles (linear interpolation between order statistics).
func Describe(vals []float64) (Distribution, error) {
	d := Distribution{}
	var err error
	if d.Mean, err = stats.Mean(vals); err != nil {
		return d, err
	}
	if d.Min, err = stats.Min(vals); err != nil {
		return d, err
	}
	if d.Max, err = stats.Max(vals); err != nil {
		return d, err
	}
	if len(vals) > 1 {
		if d.StdDev, err = stats.StandardDeviationSample(vals); err != nil {
			return d, err
		}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	d.P025 = percentileSorted(sorted, 0.025)
	d.P50 = percentileSorted(sorted, 0.50)
	d.P975 = percentileSorted(sorted, 0.975)
	return d, nil
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
