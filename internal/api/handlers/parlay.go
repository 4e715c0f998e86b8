package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/hr-parlay/internal/models"
	"github.com/stitts-dev/hr-parlay/internal/services"
	"github.com/stitts-dev/hr-parlay/pkg/utils"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type ParlayHandler struct {
	slate  *services.SlateService
	logger *logrus.Logger
}

type ToggleRequest struct {
	GameID   int `json:"game_id" binding:"required"`
	PlayerID int `json:"player_id" binding:"required"`
}

// savedParlayResponse is a saved parlay with its picks decoded.
type savedParlayResponse struct {
	*models.SavedParlay
	Picks []models.Selection `json:"picks"`
}

type parlayResponse struct {
	Picks         []models.Selection `json:"picks"`
	Count         int                `json:"count"`
	AvgParkFactor int                `json:"avg_park_factor"`
}

func NewParlayHandler(slate *services.SlateService, logger *logrus.Logger) *ParlayHandler {
	return &ParlayHandler{
		slate:  slate,
		logger: logger,
	}
}

func (h *ParlayHandler) current() parlayResponse {
	set := h.slate.Selections()
	picks := set.Picks()
	return parlayResponse{
		Picks:         picks,
		Count:         len(picks),
		AvgParkFactor: set.AverageParkFactor(),
	}
}

func (h *ParlayHandler) GetParlay(c *gin.Context) {
	utils.SendSuccess(c, h.current())
}

// TogglePlayer adds the batter to the parlay, or removes it if present.
func (h *ParlayHandler) TogglePlayer(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	added, _, err := h.slate.TogglePlayer(req.GameID, req.PlayerID)
	if err != nil {
		sendServiceError(c, h.logger, err)
		return
	}

	utils.SendSuccess(c, gin.H{
		"added":  added,
		"parlay": h.current(),
	})
}

func (h *ParlayHandler) ClearParlay(c *gin.Context) {
	h.slate.ClearParlay()
	utils.SendSuccess(c, h.current())
}

// SaveParlay persists the picks and empties the working parlay.
func (h *ParlayHandler) SaveParlay(c *gin.Context) {
	saved, err := h.slate.SaveParlay(c.Request.Context())
	if err != nil {
		sendServiceError(c, h.logger, err)
		return
	}
	utils.SendCreated(c, saved)
}

// ListSaved returns saved parlays newest first. ?limit caps the count.
func (h *ParlayHandler) ListSaved(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit <= 0 {
		utils.SendValidationError(c, "Invalid limit", c.Query("limit"))
		return
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	saved, total, err := h.slate.History(c.Request.Context(), limit)
	if err != nil {
		sendServiceError(c, h.logger, err)
		return
	}
	utils.SendSuccessWithMeta(c, saved, &utils.Meta{Total: int(total)})
}

func (h *ParlayHandler) GetSaved(c *gin.Context) {
	id, ok := parseParlayID(c)
	if !ok {
		return
	}

	saved, err := h.slate.GetSaved(c.Request.Context(), id)
	if err != nil {
		sendServiceError(c, h.logger, err)
		return
	}
	picks, err := saved.Selections()
	if err != nil {
		sendServiceError(c, h.logger, err)
		return
	}
	utils.SendSuccess(c, savedParlayResponse{SavedParlay: saved, Picks: picks})
}

func (h *ParlayHandler) DeleteSaved(c *gin.Context) {
	id, ok := parseParlayID(c)
	if !ok {
		return
	}

	if err := h.slate.DeleteSaved(c.Request.Context(), id); err != nil {
		sendServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseParlayID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid parlay ID", c.Param("id"))
		return uuid.Nil, false
	}
	return id, true
}
