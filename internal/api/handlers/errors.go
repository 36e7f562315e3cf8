package handlers

import (
	"context"
	"errors"
	"net/http"

	"budget-impact/internal/api/models"
	"budget-impact/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func abortWithError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func badRequest(c *gin.Context, code string, err error) {
	abortWithError(c, http.StatusBadRequest, code, err.Error(), nil)
}

// respondError maps domain errors onto status codes. Anything unrecognised
// is a 500.
func respondError(c *gin.Context, err error) {
	var uerr *model.UnsupportedParameterError
	var verr *model.ValidationError
	switch {
	case errors.As(err, &uerr):
		abortWithError(c, http.StatusBadRequest, "UNSUPPORTED_PARAMETER", err.Error(), map[string]interface{}{
			"parameter": uerr.Locator,
		})
	case errors.As(err, &verr):
		details := map[string]interface{}{"field": verr.Field}
		if verr.Period > 0 {
			details["period"] = verr.Period
		}
		abortWithError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), details)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		abortWithError(c, http.StatusServiceUnavailable, "CANCELLED", err.Error(), nil)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
	}
}
