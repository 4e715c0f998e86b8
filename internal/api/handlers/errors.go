package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stitts-dev/hr-parlay/internal/providers"
	"github.com/stitts-dev/hr-parlay/internal/services"
	"github.com/stitts-dev/hr-parlay/pkg/utils"
)

// sendServiceError maps service and provider errors onto the response
// envelope. Unknown errors are logged and reported as internal errors.
func sendServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrNoGames):
		c.JSON(http.StatusOK, gin.H{"status": "no_games"})
	case errors.Is(err, services.ErrInvalidDate):
		utils.SendValidationError(c, "Invalid date", err.Error())
	case errors.Is(err, services.ErrDateOutOfRange):
		utils.SendError(c, http.StatusBadRequest, utils.NewAppError(utils.ErrCodeDateOutOfRange, err.Error()))
	case errors.Is(err, services.ErrEmptyParlay):
		utils.SendError(c, http.StatusBadRequest, utils.NewAppError(utils.ErrCodeEmptyParlay, err.Error()))
	case errors.Is(err, services.ErrPlayerNotFound):
		utils.SendNotFound(c, "Player not found")
	case errors.Is(err, services.ErrGameNotFound):
		utils.SendNotFound(c, "Game not found")
	case errors.Is(err, services.ErrParlayNotFound):
		utils.SendNotFound(c, "Saved parlay not found")
	case errors.Is(err, services.ErrNoSlate):
		utils.SendError(c, http.StatusServiceUnavailable, utils.NewAppError(utils.ErrCodeServiceUnavailable, "No slate loaded yet"))
	case errors.Is(err, providers.ErrNotConfigured):
		utils.SendError(c, http.StatusServiceUnavailable, utils.NewAppError(utils.ErrCodeServiceUnavailable, "Data source not configured"))
	case errors.Is(err, providers.ErrNoData):
		utils.SendNotFound(c, "No data available")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		utils.SendError(c, http.StatusServiceUnavailable, utils.NewAppError(utils.ErrCodeServiceUnavailable, "Data source temporarily unavailable"))
	case errors.Is(err, context.DeadlineExceeded):
		utils.SendError(c, http.StatusBadGateway, utils.NewAppError(utils.ErrCodeBadGateway, "Data source timed out"))
	default:
		var statusErr *providers.StatusError
		if errors.As(err, &statusErr) {
			utils.SendError(c, http.StatusBadGateway, utils.NewAppError(utils.ErrCodeBadGateway, "Data source returned an error"))
			return
		}
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled service error")
		utils.SendInternalError(c, "Internal server error")
	}
}
