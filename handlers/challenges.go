package handlers

import (
	"net/http"
	"strconv"

	"github.com/pocketplan/budget-api/middleware"
	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/services"

	"github.com/gin-gonic/gin"
)

type ChallengeHandler struct {
	Challenges *services.ChallengeService
}

func NewChallengeHandler(challenges *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{Challenges: challenges}
}

func (h *ChallengeHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"challenges": h.Challenges.Catalog()})
}

func (h *ChallengeHandler) GetJoined(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"challenges": h.Challenges.Joined(c.Request.Context(), middleware.GetUserID(c))})
}

// UpdateJoined replaces the joined set with the given catalog ids.
func (h *ChallengeHandler) UpdateJoined(c *gin.Context) {
	var req models.UpdateChallengesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	joined, err := h.Challenges.Save(c.Request.Context(), middleware.GetUserID(c), req.IDs)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"success": false, "error": errorMessage(err, status)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "challenges": joined})
}

// Toggle joins the challenge, or leaves it when already joined.
func (h *ChallengeHandler) Toggle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid challenge id"})
		return
	}

	joined, err := h.Challenges.ToggleAndSave(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"success": false, "error": errorMessage(err, status)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "challenges": joined})
}
