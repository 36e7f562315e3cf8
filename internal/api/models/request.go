package models

import "budget-impact/internal/config"

// CaseSource names a preset or carries a case inline. Exactly one is required.
type CaseSource struct {
	CaseID string         `json:"case_id,omitempty"`
	Case   *config.Config `json:"case,omitempty"`
}

// ProjectionRequest represents the request body for running a projection
type ProjectionRequest struct {
	Model string `json:"model,omitempty"` // overrides the case's model label
	CaseSource
}

// CompareRequest runs named scenarios over one base case
type CompareRequest struct {
	Model string `json:"model,omitempty"`
	CaseSource
	Scenarios []ScenarioRequest `json:"scenarios" binding:"required,min=1,dive"`
}

// ScenarioRequest is a set of parameter overrides
type ScenarioRequest struct {
	Name      string            `json:"name" binding:"required"`
	Overrides []OverrideRequest `json:"overrides" binding:"dive"`
}

type OverrideRequest struct {
	Parameter string  `json:"parameter" binding:"required"`
	Value     float64 `json:"value"`
}

// DSARequest runs a one-way sensitivity analysis. Without parameters and
// staff_cost_range the case's own dsa section is used.
type DSARequest struct {
	Model string `json:"model,omitempty"`
	CaseSource
	Parameters     []config.RangeConfig `json:"parameters,omitempty"`
	StaffCostRange float64              `json:"staff_cost_range,omitempty"`
	Order          string               `json:"order,omitempty"` // "ascending" (default) or "tornado"
}

// PSARequest runs a Monte Carlo analysis. Without psa the case's own psa
// section is used.
type PSARequest struct {
	Model string `json:"model,omitempty"`
	CaseSource
	PSA           *config.PSAConfig `json:"psa,omitempty"`
	IncludeTrials bool              `json:"include_trials,omitempty"` // default: false
}
