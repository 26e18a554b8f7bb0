package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lingoplatform/internal/application/usecase"
	"lingoplatform/internal/infrastructure/repository"
	"lingoplatform/internal/middleware"
)

type UserHandler struct {
	gamification *usecase.GamificationService
	entitlements *usecase.EntitlementResolver
	xp           *usecase.XPLedger
	profiles     *repository.ProfileRepository
}

func NewUserHandler(gamification *usecase.GamificationService, entitlements *usecase.EntitlementResolver, xp *usecase.XPLedger, profiles *repository.ProfileRepository) *UserHandler {
	return &UserHandler{gamification: gamification, entitlements: entitlements, xp: xp, profiles: profiles}
}

// GetProfile — главный экран: профиль + прогресс + права одним ответом.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	snapshot, err := h.gamification.Snapshot(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		DisplayName string `json:"displayName" binding:"required,min=2,max=50"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.profiles.UpdateDisplayName(c, userID, req.DisplayName); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// DailyLogin зовется клиентом при старте сессии.
func (h *UserHandler) DailyLogin(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	res, err := h.gamification.DailyLogin(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) GetEntitlements(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ent, err := h.entitlements.Resolve(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ent)
}

func (h *UserHandler) GetXPHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	days, err := h.xp.History(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}
