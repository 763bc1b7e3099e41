package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dkruglov/family_budget_app/internal/core/domain"
	portssvc "github.com/dkruglov/family_budget_app/internal/core/ports/services"
	"github.com/dkruglov/family_budget_app/internal/dto"
	"github.com/dkruglov/family_budget_app/internal/middleware"
	"github.com/dkruglov/family_budget_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// budgetHandler handles HTTP requests for the monthly budget views.
type budgetHandler struct {
	snapshotService    portssvc.SnapshotSvcFacade
	carryoverService   portssvc.CarryoverSvcFacade
	attributionService portssvc.AttributionSvcFacade
	baseCurrency       string
}

// newBudgetHandler creates a new budgetHandler.
func newBudgetHandler(cfg *config.Config, services *portssvc.ServiceContainer) *budgetHandler {
	return &budgetHandler{
		snapshotService:    services.Snapshot,
		carryoverService:   services.Carryover,
		attributionService: services.Attribution,
		baseCurrency:       cfg.DefaultCurrency,
	}
}

// registerBudgetRoutes registers routes for the monthly budget views.
func registerBudgetRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := newBudgetHandler(cfg, services)

	budget := rg.Group("/budget")
	{
		budget.GET("/:month/snapshot", h.getSnapshot)
		budget.GET("/:month/tiles", h.getSourceTiles)
		budget.POST("/:month/carryover/recompute", h.recomputeCarryover)
	}
}

// requestScope pulls the explicit owner and month every budget request
// carries. All stored amounts are in the configured base currency, so the
// views are always assembled and labeled in that currency; a caller-supplied
// currency would mislabel base-currency figures.
func (h *budgetHandler) requestScope(c *gin.Context) (ownerID string, month domain.YearMonth, ok bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	ownerID = c.Param("owner_id")
	if ownerID == "" {
		logger.Error("Owner ID missing from path")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Owner ID required in path"})
		return "", domain.YearMonth{}, false
	}

	month, err := domain.ParseYearMonth(c.Param("month"))
	if err != nil {
		logger.Warn("Invalid month in path", slog.String("month", c.Param("month")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month format. Use YYYY-MM"})
		return "", domain.YearMonth{}, false
	}

	return ownerID, month, true
}

func (h *budgetHandler) getSnapshot(c *gin.Context) {
	ownerID, month, ok := h.requestScope(c)
	if !ok {
		return
	}

	snapshot, err := h.snapshotService.Snapshot(c.Request.Context(), ownerID, h.baseCurrency, month)
	if err != nil {
		respondServiceError(c, err, "Failed to assemble snapshot")
		return
	}
	c.JSON(http.StatusOK, dto.ToSnapshotResponse(snapshot))
}

func (h *budgetHandler) getSourceTiles(c *gin.Context) {
	ownerID, month, ok := h.requestScope(c)
	if !ok {
		return
	}

	tiles, err := h.attributionService.SourceTiles(c.Request.Context(), ownerID, h.baseCurrency, month)
	if err != nil {
		respondServiceError(c, err, "Failed to assemble source tiles")
		return
	}
	c.JSON(http.StatusOK, dto.ToSourceTileResponses(tiles))
}

func (h *budgetHandler) recomputeCarryover(c *gin.Context) {
	ownerID, month, ok := h.requestScope(c)
	if !ok {
		return
	}

	if err := h.carryoverService.RecomputeCarryover(c.Request.Context(), ownerID, h.baseCurrency, month); err != nil {
		respondServiceError(c, err, "Failed to recompute carryover")
		return
	}
	c.Status(http.StatusNoContent)
}
