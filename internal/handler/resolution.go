package handler

import (
	"context"
	"net/http"
	"strconv"

	"nightbite/internal/model"

	"github.com/gin-gonic/gin"
)

// ResolutionLister reads back recorded resolutions
type ResolutionLister interface {
	RecentResolutions(ctx context.Context, filter model.ResolutionFilter) ([]model.ResolutionRecord, error)
}

// ResolutionHandler exposes the resolution log
type ResolutionHandler struct {
	lister ResolutionLister
}

// NewResolutionHandler creates a new resolution handler
func NewResolutionHandler(lister ResolutionLister) *ResolutionHandler {
	return &ResolutionHandler{lister: lister}
}

// List handles GET /api/resolutions?source=&stage=&limit=
func (h *ResolutionHandler) List(c *gin.Context) {
	var filter model.ResolutionFilter

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit: must be a positive integer"})
			return
		}
		filter.Limit = limit
	}

	if raw := c.Query("source"); raw != "" {
		source := model.Source(raw)
		switch source {
		case model.SourceGroq, model.SourceHeuristic, model.SourceEmpty:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid source. Must be one of: groq, heuristic, empty"})
			return
		}
		filter.Source = &source
	}

	if stage := c.Query("stage"); stage != "" {
		filter.FailureStage = &stage
	}

	records, err := h.lister.RecentResolutions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list resolutions: " + err.Error()})
		return
	}

	views := make([]model.ResolutionView, 0, len(records))
	for _, rec := range records {
		views = append(views, rec.View())
	}

	c.JSON(http.StatusOK, gin.H{
		"resolutions": views,
		"count":       len(views),
	})
}
