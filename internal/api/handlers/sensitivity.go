package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"budget-impact/internal/analysis"
	"budget-impact/internal/api/models"
	"budget-impact/internal/config"
	"budget-impact/internal/model"
	"budget-impact/internal/projection"
	"budget-impact/internal/sensitivity"

	"github.com/gin-gonic/gin"
)

// SensitivityHandler runs DSA and PSA requests
type SensitivityHandler struct {
	engine    *projection.Engine
	casesDir  string
	maxTrials int
	workers   int
}

// NewSensitivityHandler bounds PSA requests to maxTrials trials and, when
// workers > 0, to that many parallel workers.
func NewSensitivityHandler(casesDir string, maxTrials, workers int) *SensitivityHandler {
	return &SensitivityHandler{
		engine:    projection.New(),
		casesDir:  casesDir,
		maxTrials: maxTrials,
		workers:   workers,
	}
}

// RunDSA handles POST /api/v1/dsa
func (h *SensitivityHandler) RunDSA(c *gin.Context) {
	var req models.DSARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	cfg, modelID, err := resolveCase(h.casesDir, req.Model, req.CaseSource)
	if err != nil {
		caseError(c, err)
		return
	}

	dsa := cfg.DSA
	if len(req.Parameters) > 0 || req.StaffCostRange > 0 {
		dsa = config.DSAConfig{Parameters: req.Parameters, StaffCostRange: req.StaffCostRange}
	}
	if req.Order != "" {
		dsa.Order = req.Order
	}
	if dsa.Order != "" && dsa.Order != "ascending" && dsa.Order != "tornado" {
		badRequest(c, "INVALID_REQUEST", fmt.Errorf("order must be ascending or tornado, got %q", dsa.Order))
		return
	}

	in := cfg.ToInputs()
	rows, err := sensitivity.RunDSA(c.Request.Context(), h.engine, modelID, in, dsa.Perturbations(in))
	if err != nil {
		respondError(c, err)
		return
	}
	order := "ascending"
	if dsa.Tornado() {
		rows = analysis.TornadoOrder(rows)
		order = "tornado"
	}

	resp := models.DSAResponse{Model: string(modelID), Order: order, Rows: make([]models.DSARow, len(rows))}
	for i, r := range rows {
		resp.Rows[i] = models.DSARow{
			Parameter:   r.Parameter,
			Base:        r.Base,
			ImpactAtMin: r.ImpactAtMin,
			ImpactAtMax: r.ImpactAtMax,
			Delta:       r.Delta,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// RunPSA handles POST /api/v1/psa
func (h *SensitivityHandler) RunPSA(c *gin.Context) {
	var req models.PSARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	cfg, modelID, err := resolveCase(h.casesDir, req.Model, req.CaseSource)
	if err != nil {
		caseError(c, err)
		return
	}

	section := cfg.PSA
	if req.PSA != nil {
		section = *req.PSA
	}
	in := cfg.ToInputs()
	opts := section.Options(in)
	if h.maxTrials > 0 && opts.Trials > h.maxTrials {
		abortWithError(c, http.StatusBadRequest, "TOO_MANY_TRIALS",
			fmt.Sprintf("trials must be <= %d, got %d", h.maxTrials, opts.Trials),
			map[string]interface{}{"max_trials": h.maxTrials})
		return
	}
	if h.workers > 0 && (opts.Workers <= 0 || opts.Workers > h.workers) {
		opts.Workers = h.workers
	}
	if err := sensitivity.ValidatePSA(in, opts); err != nil {
		var uerr *model.UnsupportedParameterError
		if errors.As(err, &uerr) {
			respondError(c, err)
			return
		}
		badRequest(c, "INVALID_CONFIG", err)
		return
	}

	res, err := sensitivity.RunPSA(c.Request.Context(), h.engine, modelID, in, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := analysis.SummarizePSA(res.Trials)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.PSAResponse{
		Model: string(modelID),
		Seed:  res.Seed,
		Summary: models.PSASummary{
			Trials:             summary.Trials,
			TotalImpact:        toDistribution(summary.TotalImpact),
			FinalBalance:       toDistribution(summary.FinalBalance),
			ProbPositiveImpact: summary.ProbPositiveImpact,
		},
	}
	if req.IncludeTrials {
		resp.Trials = make([]models.TrialRow, len(res.Trials))
		for i, tr := range res.Trials {
			resp.Trials[i] = models.TrialRow{Trial: tr.ID, TotalImpact: tr.TotalImpact, FinalBalance: tr.FinalBalance}
		}
	}
	c.JSON(http.StatusOK, resp)
}

func toDistribution(d analysis.Distribution) models.Distribution {
	return models.Distribution{
		Mean:   d.Mean,
		StdDev: d.StdDev,
		Min:    d.Min,
		Max:    d.Max,
		P025:   d.P025,
		P50:    d.P50,
		P975:   d.P975,
	}
}
