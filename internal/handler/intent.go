package handler

import (
	"context"
	"net/http"

	"nightbite/internal/model"

	"github.com/gin-gonic/gin"
)

// IntentRefiner turns a free-text query into a resolution envelope
type IntentRefiner interface {
	Refine(ctx context.Context, raw string) model.ResolutionEnvelope
}

// IntentHandler handles search intent requests
type IntentHandler struct {
	refiner IntentRefiner
}

// NewIntentHandler creates a new intent handler
func NewIntentHandler(refiner IntentRefiner) *IntentHandler {
	return &IntentHandler{refiner: refiner}
}

// Resolve handles POST /api/search-intent
func (h *IntentHandler) Resolve(c *gin.Context) {
	var req model.SearchIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Model-side failures are absorbed by the refiner, so this is always 200
	envelope := h.refiner.Refine(c.Request.Context(), req.Query)
	c.JSON(http.StatusOK, envelope)
}
