package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"budget-impact/internal/api/models"
	"budget-impact/internal/config"
	"budget-impact/internal/data"
	"budget-impact/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CaseHandler serves the case presets on disk
type CaseHandler struct {
	casesDir string
}

func NewCaseHandler(casesDir string) *CaseHandler {
	log.Info().Str("dir", casesDir).Msg("Serving case presets")
	return &CaseHandler{casesDir: casesDir}
}

// ListCases handles GET /api/v1/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	cases, err := data.ListCases(h.casesDir)
	if err != nil {
		log.Warn().Err(err).Msg("Could not list cases")
		cases = []data.CaseInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"cases": cases})
}

// GetCase handles GET /api/v1/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	cfg, err := data.LoadCase(h.casesDir, c.Param("id"))
	if err != nil {
		caseError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

var errNoCase = errors.New("one of case_id or case is required")

// resolveCase loads the request's case and picks the model label: the request
// value wins over the case's own.
func resolveCase(casesDir, modelLabel string, src models.CaseSource) (*config.Config, model.ModelID, error) {
	var cfg *config.Config
	switch {
	case src.Case != nil && src.CaseID != "":
		return nil, "", errors.New("case_id and case are mutually exclusive")
	case src.Case != nil:
		cfg = src.Case
		if err := cfg.Validate(); err != nil {
			return nil, "", err
		}
	case src.CaseID != "":
		var err error
		if cfg, err = data.LoadCase(casesDir, src.CaseID); err != nil {
			return nil, "", err
		}
	default:
		return nil, "", errNoCase
	}

	if modelLabel != "" {
		id, err := model.ParseModelID(modelLabel)
		if err != nil {
			return nil, "", err
		}
		return cfg, id, nil
	}
	id, err := cfg.ModelID()
	if err != nil {
		return nil, "", err
	}
	return cfg, id, nil
}

// caseError reports a failure to obtain a usable case.
func caseError(c *gin.Context, err error) {
	var verr *model.ValidationError
	var uerr *model.UnsupportedParameterError
	switch {
	case errors.As(err, &verr), errors.As(err, &uerr):
		respondError(c, err)
	case errors.Is(err, fs.ErrNotExist):
		abortWithError(c, http.StatusNotFound, "CASE_NOT_FOUND", err.Error(), nil)
	default:
		badRequest(c, "INVALID_CONFIG", fmt.Errorf("case: %w", err))
	}
}
