package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"budget-impact/internal/model"
	"budget-impact/internal/sensitivity"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk case shape (YAML, or JSON with the same keys).
type Config struct {
	Name    string `yaml:"name" json:"name"`
	Model   string `yaml:"model" json:"model,omitempty"`
	Horizon int    `yaml:"horizon" json:"horizon"`

	Population []float64      `yaml:"population" json:"population"`
	Cohorts    []CohortConfig `yaml:"cohorts" json:"cohorts"`

	// Optional: load strategies from a catalog file. Inline strategies with the
	// same name override catalog entries field by field.
	StrategiesFile string           `yaml:"strategies_file" json:"strategies_file,omitempty"`
	Strategies     []StrategyConfig `yaml:"strategies" json:"strategies"`

	Shares   ScenarioShares   `yaml:"shares" json:"shares"`
	Coverage ScenarioCoverage `yaml:"coverage" json:"coverage"`
	Budget   BudgetConfig     `yaml:"budget" json:"budget"`

	DSA DSAConfig `yaml:"dsa" json:"dsa,omitempty"`
	PSA PSAConfig `yaml:"psa" json:"psa,omitempty"`
}

type CohortConfig struct {
	Name   string  `yaml:"name" json:"name"`
	Weight float64 `yaml:"weight" json:"weight"`
}

type StrategyConfig struct {
	Name              string             `yaml:"name" json:"name"`
	StaffCost         float64            `yaml:"staff_cost" json:"staff_cost"`
	ProcedureCost     float64            `yaml:"procedure_cost" json:"procedure_cost"`
	AdverseEventCost  float64            `yaml:"adverse_event_cost" json:"adverse_event_cost"`
	CohortMultipliers map[string]float64 `yaml:"cohort_multipliers" json:"cohort_multipliers,omitempty"`
}

type ScenarioShares struct {
	Current map[string][]float64 `yaml:"current" json:"current"`
	New     map[string][]float64 `yaml:"new" json:"new"`
}

type ScenarioCoverage struct {
	Current []float64 `yaml:"current" json:"current"`
	New     []float64 `yaml:"new" json:"new"`
}

type BudgetConfig struct {
	InitialBalance float64   `yaml:"initial_balance" json:"initial_balance"`
	Inflow         []float64 `yaml:"inflow" json:"inflow"`
	OtherExpenses  []float64 `yaml:"other_expenses" json:"other_expenses"`
}

type DSAConfig struct {
	Parameters []RangeConfig `yaml:"parameters" json:"parameters,omitempty"`
	// StaffCostRange adds a ±fraction range on every strategy's staff cost
	// that is not already listed, e.g. 0.1 for 90%..110%.
	StaffCostRange float64 `yaml:"staff_cost_range" json:"staff_cost_range,omitempty"`
	// Order is "ascending" (default) or "tornado".
	Order string `yaml:"order" json:"order,omitempty"`
}

type RangeConfig struct {
	Parameter string  `yaml:"parameter" json:"parameter"`
	Min       float64 `yaml:"min" json:"min"`
	Max       float64 `yaml:"max" json:"max"`
}

type PSAConfig struct {
	Trials  int    `yaml:"trials" json:"trials,omitempty"`
	Seed    uint64 `yaml:"seed" json:"seed,omitempty"`
	Workers int    `yaml:"workers" json:"workers,omitempty"`

	CostDistributions []GammaConfig `yaml:"cost_distributions" json:"cost_distributions,omitempty"`
	// GammaShape, when set, adds a gamma prior with this shape and mean equal
	// to the base value for every strategy cost field not listed explicitly.
	GammaShape float64 `yaml:"gamma_shape" json:"gamma_shape,omitempty"`

	ShareConcentration ConcentrationConfig `yaml:"share_concentration" json:"share_concentration,omitempty"`
	// DefaultConcentration fills every period and strategy of a scenario whose
	// concentrations are not given.
	DefaultConcentration float64 `yaml:"default_concentration" json:"default_concentration,omitempty"`

	RelativeRisk *RelativeRiskConfig `yaml:"relative_risk" json:"relative_risk,omitempty"`
}

type GammaConfig struct {
	Parameter string  `yaml:"parameter" json:"parameter"`
	Shape     float64 `yaml:"shape" json:"shape"`
	Scale     float64 `yaml:"scale" json:"scale"`
}

type ConcentrationConfig struct {
	Current []map[string]float64 `yaml:"current" json:"current,omitempty"`
	New     []map[string]float64 `yaml:"new" json:"new,omitempty"`
}

type RelativeRiskConfig struct {
	Mu     float64 `yaml:"mu" json:"mu"`
	Sigma  float64 `yaml:"sigma" json:"sigma"`
	Target string  `yaml:"target" json:"target,omitempty"`
}

// DefaultTrials is used when a PSA section omits trials.
const DefaultTrials = 2000

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for listing presets that may be incomplete.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.StrategiesFile != "" {
		catalogPath := c.StrategiesFile
		if !filepath.IsAbs(catalogPath) {
			// Prefer paths relative to the config file, fall back to cwd.
			cand := filepath.Join(filepath.Dir(path), catalogPath)
			if _, err := os.Stat(cand); err == nil {
				catalogPath = cand
			}
		}
		catalog, err := loadStrategiesFile(catalogPath)
		if err != nil {
			return nil, err
		}
		c.Strategies = MergeStrategies(catalog, c.Strategies)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := c.ModelID(); err != nil {
		return err
	}
	in := c.ToInputs()
	if err := in.Validate(); err != nil {
		return fmt.Errorf("case %q invalid: %w", c.Name, err)
	}
	for _, p := range c.DSA.Parameters {
		if _, err := sensitivity.ParseLocator(p.Parameter); err != nil {
			return fmt.Errorf("dsa: %w", err)
		}
	}
	switch c.DSA.Order {
	case "", "ascending", "tornado":
	default:
		return fmt.Errorf("dsa.order must be ascending or tornado, got %q", c.DSA.Order)
	}
	return nil
}

// ModelID parses the model label; an empty label means model_1.
func (c *Config) ModelID() (model.ModelID, error) {
	if c.Model == "" {
		return model.Model1, nil
	}
	return model.ParseModelID(c.Model)
}

func (c *Config) ToInputs() *model.Inputs {
	in := &model.Inputs{
		CaseName:        c.Name,
		Horizon:         c.Horizon,
		Population:      c.Population,
		SharesCurrent:   c.Shares.Current,
		SharesNew:       c.Shares.New,
		CoverageCurrent: c.Coverage.Current,
		CoverageNew:     c.Coverage.New,
		InitialBalance:  c.Budget.InitialBalance,
		BudgetInflow:    c.Budget.Inflow,
		OtherExpenses:   c.Budget.OtherExpenses,
	}
	for _, co := range c.Cohorts {
		in.Cohorts = append(in.Cohorts, model.Cohort{Name: co.Name, Weight: co.Weight})
	}
	for _, s := range c.Strategies {
		in.Strategies = append(in.Strategies, s.ToModel())
	}
	// The config keeps ownership of its slices.
	return in.Clone()
}

func (s StrategyConfig) ToModel() model.Strategy {
	return model.Strategy{
		Name:              s.Name,
		StaffCost:         s.StaffCost,
		ProcedureCost:     s.ProcedureCost,
		AdverseEventCost:  s.AdverseEventCost,
		CohortMultipliers: s.CohortMultipliers,
	}
}

type strategiesFileWrapper struct {
	Strategies []StrategyConfig `yaml:"strategies"`
}

func loadStrategiesFile(path string) ([]StrategyConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w strategiesFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Strategies, nil
}

// MergeStrategies overlays inline strategies onto a catalog. Entries match by
// name; unmatched inline entries are appended in order.
func MergeStrategies(catalog, inline []StrategyConfig) []StrategyConfig {
	out := make([]StrategyConfig, len(catalog))
	copy(out, catalog)
	for _, o := range inline {
		merged := false
		for i := range out {
			if out[i].Name == o.Name {
				out[i] = MergeStrategy(out[i], o)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, o)
		}
	}
	return out
}

// MergeStrategy overlays non-zero fields from override onto base.
func MergeStrategy(base, override StrategyConfig) StrategyConfig {
	out := base
	if override.StaffCost != 0 {
		out.StaffCost = override.StaffCost
	}
	if override.ProcedureCost != 0 {
		out.ProcedureCost = override.ProcedureCost
	}
	if override.AdverseEventCost != 0 {
		out.AdverseEventCost = override.AdverseEventCost
	}
	if len(override.CohortMultipliers) > 0 {
		out.CohortMultipliers = make(map[string]float64, len(base.CohortMultipliers)+len(override.CohortMultipliers))
		for k, v := range base.CohortMultipliers {
			out.CohortMultipliers[k] = v
		}
		for k, v := range override.CohortMultipliers {
			out.CohortMultipliers[k] = v
		}
	}
	return out
}
