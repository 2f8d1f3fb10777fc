package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quest-rooms/internal/config"
)

// @Summary Get room pacing
// @Description Stage and countdown durations in milliseconds, for client-side timers
// @Tags Config
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /config/timings [get]
func TimingsHandler(t config.Timings) gin.HandlerFunc {
	payload := gin.H{
		"lobby_countdown_ms": t.LobbyCountdown.Milliseconds(),
		"stage_init_ms":      t.StageInit.Milliseconds(),
		"stage_party_ms":     t.StageParty.Milliseconds(),
		"stage_voting_ms":    t.StageVoting.Milliseconds(),
		"stage_quest_ms":     t.StageQuest.Milliseconds(),
		"stage_reveal_ms":    t.StageReveal.Milliseconds(),
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, payload)
	}
}
