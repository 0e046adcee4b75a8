package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/carquest/config"
	"github.com/cppla/carquest/repositories"
	"github.com/cppla/carquest/utils"
)

// rankingTopN is the size of the public standing.
const rankingTopN = 10

// RankingController serves the public standing and the caller's own position.
type RankingController struct {
	ranking *repositories.RankingRepository
}

// NewRankingController creates a RankingController.
func NewRankingController(ranking *repositories.RankingRepository) *RankingController {
	return &RankingController{ranking: ranking}
}

// Top returns the top-10 users ordered by XP with positions. The payload is
// redis-cached briefly and invalidated on every grant; a cache miss or a
// redis outage falls through to the live query.
func (r *RankingController) Top(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(utils.RankingCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	entries, err := r.ranking.TopN(rankingTopN)
	if err != nil {
		utils.Sugar.Errorf("ranking: top query failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "internal server error")
		return
	}

	ttl := time.Duration(config.Get().RankingCacheS) * time.Second
	utils.CacheSetJSON(utils.RankingCacheKey, entries, ttl)
	ctx.JSON(http.StatusOK, entries)
}

// MyPosition returns the authenticated user's position over the full user
// set, computed with the same tie rule as Top.
func (r *RankingController) MyPosition(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	position, xp, err := r.ranking.PositionOf(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			utils.Error(ctx, http.StatusNotFound, "user not found")
			return
		}
		utils.Sugar.Errorf("ranking: position query failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "internal server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"position": position, "xp": xp})
}
