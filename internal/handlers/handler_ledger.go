package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dkruglov/family_budget_app/internal/apperrors"
	"github.com/dkruglov/family_budget_app/internal/core/domain"
	portssvc "github.com/dkruglov/family_budget_app/internal/core/ports/services"
	"github.com/dkruglov/family_budget_app/internal/dto"
	"github.com/dkruglov/family_budget_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for the user-managed ledger entities.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
	}
}

// registerLedgerRoutes registers CRUD routes for categories, income sources,
// incomes and expenses.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	categories := rg.Group("/categories")
	{
		categories.POST("", h.createCategory)
		categories.GET("", h.listCategories)
		categories.PUT("/:category_id", h.updateCategory)
	}
	sources := rg.Group("/sources")
	{
		sources.POST("", h.createIncomeSource)
		sources.GET("", h.listIncomeSources)
	}
	incomes := rg.Group("/incomes")
	{
		incomes.POST("", h.createIncome)
		incomes.GET("/:month", h.listIncomes)
		incomes.DELETE("/:income_id", h.deleteIncome)
	}
	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("/:month", h.listExpenses)
		expenses.DELETE("/:expense_id", h.deleteExpense)
	}
}

func ownerFromPath(c *gin.Context) (string, bool) {
	ownerID := c.Param("owner_id")
	if ownerID == "" {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Owner ID missing from path")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Owner ID required in path"})
		return "", false
	}
	return ownerID, true
}

func monthFromPath(c *gin.Context) (domain.YearMonth, bool) {
	month, err := domain.ParseYearMonth(c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month format. Use YYYY-MM"})
		return domain.YearMonth{}, false
	}
	return month, true
}

// respondServiceError maps service errors to HTTP status codes.
func respondServiceError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn(msg, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn(msg, slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn(msg, slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrRateUnavailable):
		logger.Warn(msg, slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error(msg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func (h *ledgerHandler) createCategory(c *gin.Context) {
	ownerID, ok := ownerFromPath(c)
	if !ok {
		return
	}
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	category, err := h.ledgerService.CreateCategory(c.Request.Context(), ownerID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *ledgerHandler) updateCategory(c *gin.Context) {
	ownerID, ok := ownerFromPath(c)
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	category, err := h.ledgerService.UpdateCategory(c.Request.Context(), ownerID, c.Param("category_id"), req)
	if err != nil {
		respondServiceError(c, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *ledgerHandler) listCategories(c *gin.Context) {
	ownerID, ok := ownerFromPath(c)
	if !ok {
		return
	}
	categories, err := h.ledgerService.ListCategories(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *ledgerHandler) createIncomeSource(c *gin.Context) {
	ownerID, ok := ownerFromPath(c)
	if !ok {
		return
	}
	var req dto.CreateIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	source, err := h.ledgerService.CreateIncomeSource(c.Request.Context(), ownerID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create income source")
		return
	}
	c.JSON(http.StatusCreated, source)
}

func (h *ledgerHandler) listIncomeSources(c *gin.Context) {
	ownerID, ok := ownerFromPath(c)
	if !ok {
		return
	}
	sources, err := h.ledgerService.ListIncomeSources(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err, "Failed to list income sources")
		return
	}
	c.JSON(http.StatusOK, sources)
}

func (h *ledgerHandler) createIncome(c *gin.Context) {
	ownerID, ok := ownerFromPath(c)
	if !ok {
		return
	}
	var req dto.CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	income, err := h.ledgerService.CreateIncome(c.Request.Context(), ownerID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create income")
		return
	}
	c.JSON(http.StatusCreated, income)
}

func (h *ledgerHandler) listIncomes(c *gin.Context) {
	ownerID, ok := ownerFromPath(c)
	if !ok {
		return
	}
	month, ok := monthFromPath(c)
	if !ok {
		return
	}
	incomes, err := h.ledgerService.ListIncomes(c.Request.Context(), ownerID, month)
	if err != nil {
		respondServiceError(c, err, "Failed to list incomes")
		return
	}
	c.JSON(http.StatusOK, incomes)
}

func (h *ledgerHandler) deleteIncome(c *gin.Context) {
	ownerID, ok := ownerFromPath(c)
	if !ok {
		return
	}
	if err := h.ledgerService.DeleteIncome(c.Request.Context(), ownerID, c.Param("income_id")); err != nil {
		respondServiceError(c, err, "Failed to delete income")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ledgerHandler) deleteExpense(c *gin.Context) {
	ownerID, ok := ownerFromPath(c)
	if !ok {
		return
	}
	if err := h.ledgerService.DeleteExpense(c.Request.Context(), ownerID, c.Param("expense_id")); err != nil {
		respondServiceError(c, err, "Failed to delete expense")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ledgerHandler) createExpense(c *gin.Context) {
	ownerID, ok := ownerFromPath(c)
	if !ok {
		return
	}
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	expense, err := h.ledgerService.CreateExpense(c.Request.Context(), ownerID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create expense")
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (h *ledgerHandler) listExpenses(c *gin.Context) {
	ownerID, ok := ownerFromPath(c)
	if !ok {
		return
	}
	month, ok := monthFromPath(c)
	if !ok {
		return
	}
	expenses, err := h.ledgerService.ListExpenses(c.Request.Context(), ownerID, month)
	if err != nil {
		respondServiceError(c, err, "Failed to list expenses")
		return
	}
	c.JSON(http.StatusOK, expenses)
}
