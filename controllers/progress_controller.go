package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/carquest/repositories"
	"github.com/cppla/carquest/utils"
)

// ProgressController handles XP grants for completed activities.
type ProgressController struct {
	users *repositories.UserRepository
}

// NewProgressController creates a ProgressController.
func NewProgressController(users *repositories.UserRepository) *ProgressController {
	return &ProgressController{users: users}
}

// GrantXP adds XP to the authenticated user, recomputes level and rank, and
// logs the activity when tipus and nom are both supplied.
func (p *ProgressController) GrantXP(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	type request struct {
		XPGained int    `json:"xp_ganado"`
		Type     string `json:"tipus"`
		Name     string `json:"nom"`
		Score    int    `json:"puntuacio"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.XPGained <= 0 {
		utils.Error(ctx, http.StatusBadRequest, "invalid xp")
		return
	}

	var activity *repositories.Activity
	if req.Type != "" && req.Name != "" {
		activity = &repositories.Activity{Type: req.Type, Name: req.Name, Score: req.Score}
	}

	result, err := p.users.GrantXP(userID, req.XPGained, activity)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvalidXP):
			utils.Error(ctx, http.StatusBadRequest, "invalid xp")
		case errors.Is(err, repositories.ErrUserNotFound):
			utils.Error(ctx, http.StatusNotFound, "user not found")
		default:
			utils.Sugar.Errorf("grant xp: %v", err)
			utils.Error(ctx, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	// The public standing changed; drop the cached top list.
	utils.CacheInvalidate(utils.RankingCacheKey)

	ctx.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("+%d XP ganados", req.XPGained),
		"xp":      result.XP,
		"level":   result.Level,
		"rank":    result.Rank,
	})
}
