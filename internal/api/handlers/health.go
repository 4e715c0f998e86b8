package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stitts-dev/hr-parlay/internal/services"
)

// StatusReporter is the background refresher as seen by health checks.
type StatusReporter interface {
	GetStatus() map[string]interface{}
}

// ClientCounter is the websocket hub as seen by health checks.
type ClientCounter interface {
	ClientCount() int
}

type HealthHandler struct {
	slate     *services.SlateService
	refresher StatusReporter
	hub       ClientCounter
}

// NewHealthHandler accepts nil refresher and hub when those are disabled.
func NewHealthHandler(slate *services.SlateService, refresher StatusReporter, hub ClientCounter) *HealthHandler {
	return &HealthHandler{
		slate:     slate,
		refresher: refresher,
		hub:       hub,
	}
}

// GetHealth always returns 200 while the process is serving.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	body := gin.H{
		"status":   "ok",
		"time":     time.Now().UTC(),
		"service":  "hr-parlay",
		"breakers": h.slate.Reconciler().Breakers().Status(),
	}

	if current := h.slate.Current(); current != nil {
		body["slate"] = gin.H{
			"date":      current.Date,
			"source":    current.Source,
			"games":     len(current.Boards),
			"loaded_at": current.LoadedAt,
		}
	}
	if h.refresher != nil {
		body["refresher"] = h.refresher.GetStatus()
	}
	if h.hub != nil {
		body["websocket_clients"] = h.hub.ClientCount()
	}

	c.JSON(http.StatusOK, body)
}

// GetReady returns 503 until a slate has been loaded.
func (h *HealthHandler) GetReady(c *gin.Context) {
	current := h.slate.Current()
	if current == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"date":   current.Date,
	})
}
