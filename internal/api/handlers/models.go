package handlers

import (
	"net/http"

	"budget-impact/internal/api/models"
	"budget-impact/internal/model"

	"github.com/gin-gonic/gin"
)

// ListModels handles GET /api/v1/models
func ListModels(c *gin.Context) {
	out := []models.ModelInfo{}
	for _, id := range model.ModelIDs() {
		out = append(out, models.ModelInfo{ID: string(id), Label: id.Label()})
	}
	c.JSON(http.StatusOK, gin.H{"models": out})
}
