package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/hr-parlay/internal/models"
	"github.com/stitts-dev/hr-parlay/internal/services"
	"github.com/stitts-dev/hr-parlay/pkg/utils"
)

type GameHandler struct {
	slate  *services.SlateService
	logger *logrus.Logger
}

func NewGameHandler(slate *services.SlateService, logger *logrus.Logger) *GameHandler {
	return &GameHandler{
		slate:  slate,
		logger: logger,
	}
}

// ListGames returns the slate for ?date=YYYY-MM-DD, loading it when it is
// not the current one. Without a date it returns the current slate, or
// scans ahead for the next date with games. ?refresh=true forces a reload.
func (h *GameHandler) ListGames(c *gin.Context) {
	ctx := c.Request.Context()
	date := c.Query("date")
	refresh := c.Query("refresh") == "true"
	current := h.slate.Current()

	var (
		slate *services.Slate
		err   error
	)
	switch {
	case date != "" && (refresh || current == nil || current.Date != date):
		slate, err = h.slate.LoadSlate(ctx, date)
	case date == "" && (refresh || current == nil):
		slate, err = h.slate.FindNextSlate(ctx, time.Now())
	default:
		slate = current
	}
	if err != nil {
		sendServiceError(c, h.logger, err)
		return
	}

	utils.SendSuccessWithMeta(c, slate, &utils.Meta{
		Total:  len(slate.Boards),
		Source: slate.Source,
		Date:   slate.Date,
	})
}

// GetGame returns one game's board: game, odds, live status and ranked
// players.
func (h *GameHandler) GetGame(c *gin.Context) {
	gameID, ok := parseID(c, "id", "Invalid game ID")
	if !ok {
		return
	}

	board, err := h.slate.Board(gameID)
	if err != nil {
		sendServiceError(c, h.logger, err)
		return
	}
	utils.SendSuccessWithMeta(c, board, &utils.Meta{
		Total:  len(board.Players),
		Source: board.Game.Source,
		Date:   board.Game.Date,
	})
}

func (h *GameHandler) GetOdds(c *gin.Context) {
	gameID, ok := parseID(c, "id", "Invalid game ID")
	if !ok {
		return
	}

	board, err := h.slate.Board(gameID)
	if err != nil {
		sendServiceError(c, h.logger, err)
		return
	}
	if board.Game.Odds == nil {
		utils.SendNotFound(c, "Odds unavailable")
		return
	}
	utils.SendSuccessWithMeta(c, newOddsResponse(board.Game.Odds), &utils.Meta{
		Total:     board.Game.Odds.BookCount,
		Date:      board.Game.Date,
		Estimated: board.Game.Odds.Estimated,
	})
}

// moneylineDisplay is a line as the board renders it: "+135" and its
// favorite/underdog bucket.
type moneylineDisplay struct {
	Text  string `json:"text"`
	Class string `json:"class"`
}

type oddsResponse struct {
	*models.OddsSnapshot
	HomeDisplay moneylineDisplay `json:"home_display"`
	AwayDisplay moneylineDisplay `json:"away_display"`
}

func newOddsResponse(odds *models.OddsSnapshot) oddsResponse {
	return oddsResponse{
		OddsSnapshot: odds,
		HomeDisplay:  displayMoneyline(odds.HomeML),
		AwayDisplay:  displayMoneyline(odds.AwayML),
	}
}

func displayMoneyline(ml int) moneylineDisplay {
	return moneylineDisplay{
		Text:  models.FormatMoneyline(ml),
		Class: models.MoneylineClass(ml),
	}
}

func parseID(c *gin.Context, param, message string) (int, bool) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id <= 0 {
		utils.SendValidationError(c, message, c.Param(param))
		return 0, false
	}
	return id, true
}
