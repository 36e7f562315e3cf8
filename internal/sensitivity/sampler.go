package sensitivity

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws from the PSA distributions using a single source.
// It is not safe for concurrent use; each trial gets its own.
type Sampler struct {
	src rand.Source
}

func NewSampler(src rand.Source) *Sampler {
	return &Sampler{src: src}
}

// trialSampler derives an independent, reproducible stream for one trial.
func trialSampler(seed uint64, trial int) *Sampler {
	return NewSampler(rand.NewPCG(seed, uint64(trial)))
}

// Gamma draws with shape k and scale theta (mean k*theta).
func (s *Sampler) Gamma(shape, scale float64) float64 {
	return distuv.Gamma{Alpha: shape, Beta: 1 / scale, Src: s.src}.Rand()
}

// Dirichlet draws a vector on the simplex with the given concentrations.
func (s *Sampler) Dirichlet(alpha []float64) []float64 {
	return distmv.NewDirichlet(alpha, s.src).Rand(nil)
}

// LogNormal draws exp(N(mu, sigma^2)).
func (s *Sampler) LogNormal(mu, sigma float64) float64 {
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: s.src}.Rand()
}
