package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quest-rooms/internal/api/ws"
	"quest-rooms/internal/config"
	"quest-rooms/internal/room"
)

func NewRouter(sup *room.Supervisor, hub *ws.Hub, cfg config.Config) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowCredentials = false
	r.Use(cors.New(corsCfg))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("quest_rooms", store))

	// WebSocket subscription to a room's topic
	r.GET("/ws", hub.HandleWS(PlayerID))

	// --- ROOM ENDPOINTS ---
	r.POST("/create-room", CreateRoomHandler(sup))
	r.POST("/join", JoinHandler(sup))
	r.POST("/leave", LeaveHandler(sup))
	r.GET("/rooms", RoomsHandler(sup))
	r.GET("/room-state", RoomStateHandler(sup))

	// --- LOBBY ENDPOINTS ---
	r.POST("/ready", ReadyHandler(sup))

	// --- GAME ENDPOINTS ---
	r.POST("/quest-team", QuestTeamHandler(sup))
	r.POST("/team-vote", TeamVoteHandler(sup))
	r.POST("/mission-vote", MissionVoteHandler(sup))
	r.POST("/chat", ChatHandler(sup))
	r.GET("/my-role", MyRoleHandler(sup))

	// --- OPS ENDPOINTS ---
	r.GET("/config/timings", TimingsHandler(cfg.Timings))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
