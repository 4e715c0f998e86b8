package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stitts-dev/hr-parlay/internal/parks"
	"github.com/stitts-dev/hr-parlay/pkg/utils"
)

type parkResponse struct {
	parks.Profile
	Class parks.Class `json:"class"`
	Label string      `json:"label"`
	Boost string      `json:"boost"`
}

func newParkResponse(p parks.Profile) parkResponse {
	return parkResponse{
		Profile: p,
		Class:   parks.Classify(p.Factor),
		Label:   parks.Label(p.Factor),
		Boost:   parks.FormatBoost(p.Factor),
	}
}

type ParkHandler struct{}

func NewParkHandler() *ParkHandler {
	return &ParkHandler{}
}

// ListParks returns every venue, most hitter-friendly first.
func (h *ParkHandler) ListParks(c *gin.Context) {
	all := parks.All()
	out := make([]parkResponse, len(all))
	for i, p := range all {
		out[i] = newParkResponse(p)
	}
	utils.SendSuccessWithMeta(c, out, &utils.Meta{Total: len(out)})
}

func (h *ParkHandler) GetPark(c *gin.Context) {
	team := c.Param("team")
	if !parks.Known(team) {
		utils.SendNotFound(c, "Park not found")
		return
	}
	utils.SendSuccess(c, newParkResponse(parks.Lookup(team)))
}
