package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/hr-parlay/internal/matchup"
	"github.com/stitts-dev/hr-parlay/internal/services"
	"github.com/stitts-dev/hr-parlay/pkg/utils"
)

type PlayerHandler struct {
	reconciler *services.Reconciler
	logger     *logrus.Logger
}

func NewPlayerHandler(reconciler *services.Reconciler, logger *logrus.Logger) *PlayerHandler {
	return &PlayerHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// GetAdvancedStats returns Savant metrics. Players missing from the
// leaderboard come back with available=false rather than an error.
func (h *PlayerHandler) GetAdvancedStats(c *gin.Context) {
	playerID, ok := parseID(c, "id", "Invalid player ID")
	if !ok {
		return
	}

	stats, err := h.reconciler.AdvancedStats(c.Request.Context(), playerID)
	if err != nil {
		sendServiceError(c, h.logger, err)
		return
	}
	if stats == nil {
		utils.SendSuccess(c, gin.H{"player_id": playerID, "available": false})
		return
	}
	utils.SendSuccess(c, gin.H{"player_id": playerID, "available": true, "stats": stats})
}

// GetPitcher returns season aggregates and the last starts with an HR/9
// descriptor.
func (h *PlayerHandler) GetPitcher(c *gin.Context) {
	pitcherID, ok := parseID(c, "id", "Invalid pitcher ID")
	if !ok {
		return
	}

	pitcher, err := h.reconciler.PitcherDetail(c.Request.Context(), pitcherID)
	if err != nil {
		sendServiceError(c, h.logger, err)
		return
	}
	utils.SendSuccess(c, gin.H{
		"pitcher":      pitcher,
		"description":  matchup.DescribeHR9(pitcher.EffectiveHR9()),
		"platoon_hint": matchup.PlatoonHint(pitcher.EffectiveHand()),
	})
}

// GetHRLeaders returns the season home run leaders.
func (h *PlayerHandler) GetHRLeaders(c *gin.Context) {
	leaders, err := h.reconciler.HRLeaders(c.Request.Context())
	if err != nil {
		sendServiceError(c, h.logger, err)
		return
	}
	utils.SendSuccessWithMeta(c, leaders, &utils.Meta{Total: len(leaders)})
}
