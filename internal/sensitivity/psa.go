package sensitivity

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"budget-impact/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// RRTarget selects what a sampled relative-risk factor multiplies.
type RRTarget string

const (
	RRCosts      RRTarget = "costs"
	RRPopulation RRTarget = "population"
)

// ParseRRTarget accepts the canonical names and the original "costos"/"poblacion".
// An empty string means costs.
func ParseRRTarget(s string) (RRTarget, error) {
	switch s {
	case "", "costs", "costos":
		return RRCosts, nil
	case "population", "poblacion":
		return RRPopulation, nil
	}
	return "", unsupported(s, "relative risk target must be costs or population")
}

// CostDistribution is a gamma prior (shape k, scale theta) on one strategy cost field.
type CostDistribution struct {
	Parameter string
	Shape     float64
	Scale     float64
}

// RelativeRisk is a lognormal multiplicative factor. Sigma 0 disables it.
type RelativeRisk struct {
	Mu     float64
	Sigma  float64
	Target RRTarget
}

type PSAConfig struct {
	Trials int
	// Seed makes runs reproducible; 0 picks a random seed.
	Seed uint64
	// Workers bounds parallel trials; <= 0 means runtime.NumCPU().
	Workers int

	CostDistributions []CostDistribution

	// ShareConcentrationCurrent/New hold one strategy->alpha map per period.
	// Leaving one empty keeps that scenario's base shares.
	ShareConcentrationCurrent []map[string]float64
	ShareConcentrationNew     []map[string]float64

	RelativeRisk *RelativeRisk
}

// Trial is one Monte Carlo draw's outcome.
type Trial struct {
	ID           int
	TotalImpact  float64
	FinalBalance float64
}

type PSAResult struct {
	Seed   uint64
	Trials []Trial
}

// psaPlan is a PSAConfig resolved against a case.
type psaPlan struct {
	costs    []Locator
	gamma    []CostDistribution
	alphaCur [][]float64
	alphaNew [][]float64
	names    []string
	rr       *RelativeRisk
	rrTarget RRTarget
}

func compilePSA(base *model.Inputs, cfg PSAConfig) (*psaPlan, error) {
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("trials must be >= 1, got %d", cfg.Trials)
	}
	p := &psaPlan{names: base.StrategyNames()}

	for _, cd := range cfg.CostDistributions {
		loc, err := ParseLocator(cd.Parameter)
		if err != nil {
			return nil, err
		}
		if loc.Kind != StrategyCost {
			return nil, unsupported(cd.Parameter, "cost distributions must address a strategy cost field")
		}
		if err := loc.Check(base); err != nil {
			return nil, err
		}
		if cd.Shape <= 0 || cd.Scale <= 0 {
			return nil, fmt.Errorf("%s: gamma shape and scale must be > 0", cd.Parameter)
		}
		p.costs = append(p.costs, loc)
		p.gamma = append(p.gamma, cd)
	}

	var err error
	if p.alphaCur, err = alphaVectors("current", base, cfg.ShareConcentrationCurrent); err != nil {
		return nil, err
	}
	if p.alphaNew, err = alphaVectors("new", base, cfg.ShareConcentrationNew); err != nil {
		return nil, err
	}

	if rr := cfg.RelativeRisk; rr != nil {
		if rr.Sigma < 0 {
			return nil, fmt.Errorf("relative risk sigma must be >= 0")
		}
		target, err := ParseRRTarget(string(rr.Target))
		if err != nil {
			return nil, err
		}
		if rr.Sigma > 0 {
			p.rr = rr
			p.rrTarget = target
		}
	}
	return p, nil
}

// ValidatePSA reports whether cfg can be run against base without running it.
func ValidatePSA(base *model.Inputs, cfg PSAConfig) error {
	_, err := compilePSA(base, cfg)
	return err
}

// alphaVectors orders each period's concentrations by strategy declaration order.
func alphaVectors(scenario string, base *model.Inputs, conc []map[string]float64) ([][]float64, error) {
	if len(conc) == 0 {
		return nil, nil
	}
	if len(conc) != base.Horizon {
		return nil, fmt.Errorf("share concentration (%s): expected %d periods, got %d", scenario, base.Horizon, len(conc))
	}
	out := make([][]float64, len(conc))
	for t, m := range conc {
		vec := make([]float64, len(base.Strategies))
		for i, s := range base.Strategies {
			a, ok := m[s.Name]
			if !ok || a <= 0 {
				return nil, fmt.Errorf("share concentration (%s) period %d: strategy %q needs alpha > 0", scenario, t+1, s.Name)
			}
			vec[i] = a
		}
		out[t] = vec
	}
	return out, nil
}

// draw builds one perturbed clone of base.
func (p *psaPlan) draw(base *model.Inputs, s *Sampler) (*model.Inputs, error) {
	in := base.Clone()

	for i, loc := range p.costs {
		g := p.gamma[i]
		if err := loc.Apply(in, s.Gamma(g.Shape, g.Scale)); err != nil {
			return nil, err
		}
	}

	in.SharesCurrent = p.drawShares(in.SharesCurrent, p.alphaCur, s)
	in.SharesNew = p.drawShares(in.SharesNew, p.alphaNew, s)

	if p.rr != nil {
		f := s.LogNormal(p.rr.Mu, p.rr.Sigma)
		switch p.rrTarget {
		case RRCosts:
			for i := range in.Strategies {
				in.Strategies[i].ScaleCosts(f)
			}
		case RRPopulation:
			for t := range in.Population {
				in.Population[t] *= f
			}
		}
	}
	return in, nil
}

func (p *psaPlan) drawShares(shares map[string][]float64, alpha [][]float64, s *Sampler) map[string][]float64 {
	if alpha == nil {
		return shares
	}
	T := len(alpha)
	out := make(map[string][]float64, len(p.names))
	for _, name := range p.names {
		out[name] = make([]float64, T)
	}
	for t, a := range alpha {
		vec := s.Dirichlet(a)
		for i, name := range p.names {
			out[name][t] = vec[i]
		}
	}
	return out
}

// RunPSA runs cfg.Trials independent Monte Carlo trials over base.
//
// Trials are spread across workers; each trial draws from its own generator
// seeded by (seed, trial index), so a fixed seed gives identical trials for any
// worker count. Cancelling ctx stops outstanding trials and returns ctx.Err().
// An invalid base fails before any trial is drawn.
func RunPSA(ctx context.Context, r Runner, modelID model.ModelID, base *model.Inputs, cfg PSAConfig) (*PSAResult, error) {
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("base case: %w", err)
	}
	plan, err := compilePSA(base, cfg)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}

	start := time.Now()
	log.Info().
		Int("trials", cfg.Trials).
		Int("workers", workers).
		Uint64("seed", seed).
		Str("model", string(modelID)).
		Msg("Starting probabilistic sensitivity analysis")

	trials := make([]Trial, cfg.Trials)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := w; i < cfg.Trials; i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				in, err := plan.draw(base, trialSampler(seed, i))
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}
				res, err := r.Run(modelID, in)
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}
				trials[i] = Trial{ID: i, TotalImpact: res.TotalImpact, FinalBalance: res.FinalBalance}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	log.Info().
		Int("trials", cfg.Trials).
		Dur("elapsed", time.Since(start)).
		Msg("Probabilistic sensitivity analysis finished")

	return &PSAResult{Seed: seed, Trials: trials}, nil
}
