package models

// ProjectionResponse represents the response from a projection run
type ProjectionResponse struct {
	ID       string            `json:"id,omitempty"`
	Model    string            `json:"model"`
	Label    string            `json:"model_label"`
	CaseName string            `json:"case_name"`
	Summary  ProjectionSummary `json:"summary"`
	Table    []TableRow        `json:"table"`
}

// ProjectionSummary contains the headline figures
type ProjectionSummary struct {
	Periods      int     `json:"periods"`
	TotalImpact  float64 `json:"total_impact"`
	FinalBalance float64 `json:"final_balance"`
}

// TableRow represents one period of the projection table
type TableRow struct {
	Period                int     `json:"period"`
	Population            float64 `json:"population"`
	CoverageCurrent       float64 `json:"coverage_current"`
	CoverageNew           float64 `json:"coverage_new"`
	CostPerPatientCurrent float64 `json:"cost_per_patient_current"`
	CostPerPatientNew     float64 `json:"cost_per_patient_new"`
	AggregateCurrent      float64 `json:"aggregate_current"`
	AggregateNew          float64 `json:"aggregate_new"`
	Impact                float64 `json:"impact"`
	Balance               float64 `json:"balance"`
}

// CompareResponse represents the response from a scenario comparison
type CompareResponse struct {
	Model     string           `json:"model"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

// ScenarioResult contains results for one scenario; "base" comes first
type ScenarioResult struct {
	Name         string  `json:"name"`
	TotalImpact  float64 `json:"total_impact"`
	FinalBalance float64 `json:"final_balance"`
}

type DSAResponse struct {
	Model string   `json:"model"`
	Order string   `json:"order"`
	Rows  []DSARow `json:"rows"`
}

type DSARow struct {
	Parameter   string  `json:"parameter"`
	Base        float64 `json:"base"`
	ImpactAtMin float64 `json:"impact_at_min"`
	ImpactAtMax float64 `json:"impact_at_max"`
	Delta       float64 `json:"delta"`
}

type PSAResponse struct {
	Model   string     `json:"model"`
	Seed    uint64     `json:"seed"`
	Summary PSASummary `json:"summary"`
	Trials  []TrialRow `json:"trials,omitempty"`
}

type PSASummary struct {
	Trials             int          `json:"trials"`
	TotalImpact        Distribution `json:"total_impact"`
	FinalBalance       Distribution `json:"final_balance"`
	ProbPositiveImpact float64      `json:"prob_positive_impact"`
}

type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P025   float64 `json:"p2_5"`
	P50    float64 `json:"p50"`
	P975   float64 `json:"p97_5"`
}

type TrialRow struct {
	Trial        int     `json:"trial"`
	TotalImpact  float64 `json:"total_impact"`
	FinalBalance float64 `json:"final_balance"`
}

// ModelInfo describes a methodological variant
type ModelInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
