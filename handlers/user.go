package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketplan/budget-api/middleware"
	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/services"
	"github.com/pocketplan/budget-api/store"
	"github.com/pocketplan/budget-api/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Profiles *services.ProfileService
}

func NewUserHandler(profiles *services.ProfileService) *UserHandler {
	return &UserHandler{Profiles: profiles}
}

// ============================================================================
// PROFILE MANAGEMENT
// ============================================================================

func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.Profiles.Get(c.Request.Context(), middleware.GetUserID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	respondResult(c, h.Profiles.UpdateAccount(c.Request.Context(), middleware.GetUserID(c), req))
}

// ============================================================================
// INCOME & SAVINGS
// ============================================================================

func (h *UserHandler) GetIncome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"income": h.Profiles.Income(c.Request.Context(), middleware.GetUserID(c))})
}

func (h *UserHandler) UpdateIncome(c *gin.Context) {
	var req models.UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	income := utils.ParseAmountText(req.Income)
	respondResult(c, h.Profiles.UpdateIncome(c.Request.Context(), middleware.GetUserID(c), income))
}

func (h *UserHandler) GetSavingsGoal(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"savings_goal": h.Profiles.SavingsGoal(c.Request.Context(), middleware.GetUserID(c))})
}

// GetDashboard returns the summary for the dashboard tab.
func (h *UserHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.Profiles.Dashboard(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
