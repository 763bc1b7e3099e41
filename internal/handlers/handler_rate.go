package handlers

import (
	"net/http"

	portssvc "github.com/dkruglov/family_budget_app/internal/core/ports/services"
	"github.com/dkruglov/family_budget_app/internal/dto"
	"github.com/gin-gonic/gin"
)

// rateHandler handles HTTP requests for exchange rates. Rates are shared
// reference data, not owner-scoped.
type rateHandler struct {
	rateService portssvc.RateSvcFacade
}

// newRateHandler creates a new rateHandler.
func newRateHandler(rs portssvc.RateSvcFacade) *rateHandler {
	return &rateHandler{
		rateService: rs,
	}
}

// registerRateRoutes registers routes for recording exchange rates.
func registerRateRoutes(rg *gin.RouterGroup, rateService portssvc.RateSvcFacade) {
	h := newRateHandler(rateService)

	rates := rg.Group("/rates")
	{
		rates.POST("", h.createRate)
	}
}

func (h *rateHandler) createRate(c *gin.Context) {
	var req dto.CreateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	err := h.rateService.SaveRate(c.Request.Context(), req.FromCurrencyCode, req.ToCurrencyCode, req.Rate, req.DateEffective)
	if err != nil {
		respondServiceError(c, err, "Failed to save exchange rate")
		return
	}
	c.Status(http.StatusCreated)
}
