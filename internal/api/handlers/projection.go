package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"budget-impact/internal/api/models"
	"budget-impact/internal/data"
	"budget-impact/internal/projection"
	"budget-impact/internal/report"
	"budget-impact/internal/sensitivity"

	"github.com/gin-gonic/gin"
)

// ProjectionHandler handles projection requests and serves cached results
type ProjectionHandler struct {
	engine   *projection.Engine
	cache    *data.ResultCache
	casesDir string
}

func NewProjectionHandler(cache *data.ResultCache, casesDir string) *ProjectionHandler {
	return &ProjectionHandler{
		engine:   projection.New(),
		cache:    cache,
		casesDir: casesDir,
	}
}

// RunProjection handles POST /api/v1/projection
func (h *ProjectionHandler) RunProjection(c *gin.Context) {
	var req models.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	cfg, modelID, err := resolveCase(h.casesDir, req.Model, req.CaseSource)
	if err != nil {
		caseError(c, err)
		return
	}

	in := cfg.ToInputs()
	res, err := h.engine.Run(modelID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	entry := h.cache.Put(in, res)
	c.JSON(http.StatusOK, buildProjectionResponse(entry.ID, res))
}

// GetProjection handles GET /api/v1/projection/:id
func (h *ProjectionHandler) GetProjection(c *gin.Context) {
	entry, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildProjectionResponse(entry.ID, entry.Result))
}

// ExportProjection handles GET /api/v1/projection/:id/export?format=csv|xlsx|html
func (h *ProjectionHandler) ExportProjection(c *gin.Context) {
	entry, ok := h.lookup(c)
	if !ok {
		return
	}
	res := entry.Result
	name := "projection-" + entry.ID

	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		var buf bytes.Buffer
		if err := projection.EncodeTableCSV(&buf, res.Table); err != nil {
			respondError(c, err)
			return
		}
		attachment(c, name+".csv")
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := report.WriteWorkbook(&buf, res, nil, nil); err != nil {
			respondError(c, err)
			return
		}
		attachment(c, name+".xlsx")
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	case "html":
		page := report.HTML(report.Meta{Title: res.CaseName}, res)
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	default:
		badRequest(c, "INVALID_FORMAT", fmt.Errorf("unknown export format %q (want csv, xlsx or html)", format))
	}
}

// CompareScenarios handles POST /api/v1/projection/compare
func (h *ProjectionHandler) CompareScenarios(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	cfg, modelID, err := resolveCase(h.casesDir, req.Model, req.CaseSource)
	if err != nil {
		caseError(c, err)
		return
	}

	scenarios := make([]sensitivity.Scenario, len(req.Scenarios))
	for i, s := range req.Scenarios {
		scenarios[i].Name = s.Name
		for _, o := range s.Overrides {
			scenarios[i].Overrides = append(scenarios[i].Overrides, sensitivity.Override{Parameter: o.Parameter, Value: o.Value})
		}
	}
	results, err := sensitivity.RunScenarios(c.Request.Context(), h.engine, modelID, cfg.ToInputs(), scenarios)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.CompareResponse{Model: string(modelID)}
	for _, r := range results {
		resp.Scenarios = append(resp.Scenarios, models.ScenarioResult{
			Name:         r.Name,
			TotalImpact:  r.TotalImpact,
			FinalBalance: r.FinalBalance,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectionHandler) lookup(c *gin.Context) (*data.CachedResult, bool) {
	id := c.Param("id")
	entry, ok := h.cache.Get(id)
	if !ok {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("no projection with id %q (results expire)", id), nil)
		return nil, false
	}
	return entry, true
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func buildProjectionResponse(id string, res *projection.Result) models.ProjectionResponse {
	resp := models.ProjectionResponse{
		ID:       id,
		Model:    string(res.ModelID),
		Label:    res.ModelID.Label(),
		CaseName: res.CaseName,
		Summary: models.ProjectionSummary{
			Periods:      len(res.Table),
			TotalImpact:  res.TotalImpact,
			FinalBalance: res.FinalBalance,
		},
		Table: make([]models.TableRow, len(res.Table)),
	}
	for i, r := range res.Table {
		resp.Table[i] = models.TableRow{
			Period:                r.Period,
			Population:            r.Population,
			CoverageCurrent:       r.CoverageCurrent,
			CoverageNew:           r.CoverageNew,
			CostPerPatientCurrent: r.CostPerPatientCurrent,
			CostPerPatientNew:     r.CostPerPatientNew,
			AggregateCurrent:      r.AggregateCurrent,
			AggregateNew:          r.AggregateNew,
			Impact:                r.Impact,
			Balance:               r.Balance,
		}
	}
	return resp
}
