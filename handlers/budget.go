package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketplan/budget-api/middleware"
	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/services"

	"github.com/gin-gonic/gin"
)

const budgetsSavedMessage = "Your budgets have been saved successfully!"

type BudgetHandler struct {
	Budgets *services.BudgetService
}

func NewBudgetHandler(budgets *services.BudgetService) *BudgetHandler {
	return &BudgetHandler{Budgets: budgets}
}

// GetBudgets returns both budget lists, the income and the current advice.
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	c.JSON(http.StatusOK, h.Budgets.Overview(c.Request.Context(), middleware.GetUserID(c)))
}

// UpdateBudgets writes whichever of fixed_budgets / variable_budgets is present.
func (h *BudgetHandler) UpdateBudgets(c *gin.Context) {
	var req models.BudgetUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.Budgets.Save(c.Request.Context(), userID, req); err != nil {
		h.saveFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": budgetsSavedMessage,
		"budgets": h.Budgets.Load(c.Request.Context(), userID),
	})
}

func (h *BudgetHandler) AddVariable(c *gin.Context) {
	var req models.AddVariableBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.Budgets.AddVariable(c.Request.Context(), middleware.GetUserID(c), req.Title, req.Amount)
	if err != nil {
		h.saveFailed(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "budgets": data})
}

func (h *BudgetHandler) EditVariable(c *gin.Context) {
	var req models.EditVariableBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.Budgets.EditVariable(c.Request.Context(), middleware.GetUserID(c), c.Param("title"), req.Amount)
	if err != nil {
		h.saveFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "budgets": data})
}

func (h *BudgetHandler) DeleteVariable(c *gin.Context) {
	data, err := h.Budgets.DeleteVariable(c.Request.Context(), middleware.GetUserID(c), c.Param("title"))
	if err != nil {
		h.saveFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "budgets": data})
}

func (h *BudgetHandler) GetAdvice(c *gin.Context) {
	c.JSON(http.StatusOK, h.Budgets.Advice(c.Request.Context(), middleware.GetUserID(c)))
}

// GetChart renders the budget breakdown as a PNG pie chart.
func (h *BudgetHandler) GetChart(c *gin.Context) {
	data := h.Budgets.Load(c.Request.Context(), middleware.GetUserID(c))
	png, err := services.RenderBudgetChart(data.FixedBudgets, data.VariableBudgets)
	if errors.Is(err, services.ErrNothingToChart) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render chart"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *BudgetHandler) saveFailed(c *gin.Context, err error) {
	if errors.Is(err, services.ErrBudgetSaveFailed) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": services.ErrBudgetSaveFailed.Error()})
		return
	}
	status := statusFor(err)
	c.JSON(status, gin.H{"success": false, "error": errorMessage(err, status)})
}
