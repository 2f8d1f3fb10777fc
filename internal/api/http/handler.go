package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quest-rooms/internal/room"
	"quest-rooms/internal/roomcode"
)

var errInvalidVote = errors.New("vote must be one of the allowed values")

func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomClosed):
		return http.StatusNotFound
	case errors.Is(err, roomcode.ErrInvalidFormat),
		errors.Is(err, room.ErrNameInvalid),
		errors.Is(err, room.ErrEmptyText),
		errors.Is(err, errInvalidVote):
		return http.StatusBadRequest
	case errors.Is(err, room.ErrNotKing),
		errors.Is(err, room.ErrNotOnQuest),
		errors.Is(err, room.ErrUnknownPlayer):
		return http.StatusForbidden
	case errors.Is(err, room.ErrNameTaken),
		errors.Is(err, room.ErrLobbyFull),
		errors.Is(err, room.ErrGameInProgress),
		errors.Is(err, room.ErrGameExists),
		errors.Is(err, room.ErrWrongStage),
		errors.Is(err, room.ErrTeamFull):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// @Summary Create new room
// @Description Generate a room code and open its lobby; joins the creator when player_name is given
// @Tags Room
// @Accept json
// @Produce json
// @Param request body http.CreateRoomRequest true "Creator info"
// @Success 200 {object} map[string]interface{}
// @Router /create-room [post]
func CreateRoomHandler(sup *room.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRoomRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		code := roomcode.Generate()
		lobby := sup.EnsureLobby(code)
		if req.PlayerName != "" {
			if err := lobby.Join(PlayerID(c), req.PlayerName); err != nil {
				fail(c, err)
				return
			}
		}
		snap, err := lobby.Snapshot()
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"room_code": code, "lobby": snap})
	}
}

// @Summary Join a room's lobby
// @Description Seats the session player in the lobby, creating it on first reference
// @Tags Room
// @Accept json
// @Produce json
// @Param request body http.JoinRequest true "Room and name"
// @Success 200 {object} map[string]interface{}
// @Router /join [post]
func JoinHandler(sup *room.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req JoinRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		code, err := roomcode.Validate(req.RoomCode)
		if err != nil {
			fail(c, err)
			return
		}
		lobby := sup.EnsureLobby(code)
		if err := lobby.Join(PlayerID(c), req.PlayerName); err != nil {
			fail(c, err)
			return
		}
		snap, err := lobby.Snapshot()
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"room_code": code, "lobby": snap})
	}
}

// @Summary Leave a room
// @Description Removes the session player from the lobby, or from a running game
// @Tags Room
// @Accept json
// @Produce json
// @Param request body http.RoomRequest true "Room code"
// @Success 200 {object} map[string]interface{}
// @Router /leave [post]
func LeaveHandler(sup *room.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := bindRoomCode(c)
		if !ok {
			return
		}
		pid := PlayerID(c)
		if g, running := sup.Game(code); running {
			err := g.RemovePlayer(pid)
			if err == nil {
				c.JSON(http.StatusOK, gin.H{"ok": true})
				return
			}
			if !errors.Is(err, room.ErrUnknownPlayer) && !errors.Is(err, room.ErrRoomClosed) {
				fail(c, err)
				return
			}
			// Not in the game; maybe seated in the lobby.
		}
		lobby, found := sup.Lobby(code)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if err := lobby.Leave(pid); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// @Summary Toggle ready state
// @Tags Lobby
// @Accept json
// @Produce json
// @Param request body http.RoomRequest true "Room code"
// @Success 200 {object} map[string]interface{}
// @Router /ready [post]
func ReadyHandler(sup *room.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := bindRoomCode(c)
		if !ok {
			return
		}
		lobby, found := sup.Lobby(code)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if err := lobby.ToggleReady(PlayerID(c)); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// @Summary Toggle a quest team member
// @Description Only the current king, during party assembly
// @Tags Game
// @Accept json
// @Produce json
// @Param request body http.QuestTeamRequest true "Room and target player"
// @Success 200 {object} map[string]interface{}
// @Router /quest-team [post]
func QuestTeamHandler(sup *room.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuestTeamRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		g, found := lookupGame(c, sup, req.RoomCode)
		if !found {
			return
		}
		if err := g.ToggleQuestMember(PlayerID(c), req.TargetID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// @Summary Vote on the proposed quest team
// @Tags Game
// @Accept json
// @Produce json
// @Param request body http.TeamVoteRequest true "Room and vote"
// @Success 200 {object} map[string]interface{}
// @Router /team-vote [post]
func TeamVoteHandler(sup *room.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TeamVoteRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		vote := room.TeamVote(req.Vote)
		if vote != room.VoteApprove && vote != room.VoteReject {
			fail(c, errInvalidVote)
			return
		}
		g, found := lookupGame(c, sup, req.RoomCode)
		if !found {
			return
		}
		if err := g.VoteForTeam(PlayerID(c), vote); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// @Summary Vote on the running mission
// @Description Quest members only
// @Tags Game
// @Accept json
// @Produce json
// @Param request body http.MissionVoteRequest true "Room and vote"
// @Success 200 {object} map[string]interface{}
// @Router /mission-vote [post]
func MissionVoteHandler(sup *room.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MissionVoteRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		vote := room.QuestVote(req.Vote)
		if vote != room.VoteAssist && vote != room.VoteSabotage {
			fail(c, errInvalidVote)
			return
		}
		g, found := lookupGame(c, sup, req.RoomCode)
		if !found {
			return
		}
		if err := g.VoteForMission(PlayerID(c), vote); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// @Summary Send a chat line
// @Tags Game
// @Accept json
// @Produce json
// @Param request body http.ChatRequest true "Room and text"
// @Success 200 {object} map[string]interface{}
// @Router /chat [post]
func ChatHandler(sup *room.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChatRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		g, found := lookupGame(c, sup, req.RoomCode)
		if !found {
			return
		}
		if err := g.Message(PlayerID(c), req.Text); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// @Summary List rooms
// @Description Snapshot of every registered room; rooms closing mid-query are skipped
// @Tags Room
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /rooms [get]
func RoomsHandler(sup *room.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": sup.Rooms()})
	}
}

// @Summary Current room state
// @Description Pull this before subscribing to the room's topic
// @Tags Room
// @Produce json
// @Param room_code query string true "Room Code"
// @Success 200 {object} map[string]interface{}
// @Router /room-state [get]
func RoomStateHandler(sup *room.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, err := roomcode.Validate(c.Query("room_code"))
		if err != nil {
			fail(c, err)
			return
		}
		info := room.RoomInfo{Code: code}
		if lobby, ok := sup.Lobby(code); ok {
			if snap, err := lobby.Snapshot(); err == nil {
				info.Lobby = &snap
			}
		}
		if g, ok := sup.Game(code); ok {
			if snap, err := g.Snapshot(); err == nil {
				info.Game = &snap
			}
		}
		if info.Lobby == nil && info.Game == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

// @Summary The session player's secret role
// @Tags Game
// @Produce json
// @Param room_code query string true "Room Code"
// @Success 200 {object} map[string]interface{}
// @Router /my-role [get]
func MyRoleHandler(sup *room.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, found := lookupGame(c, sup, c.Query("room_code"))
		if !found {
			return
		}
		role, err := g.RoleOf(PlayerID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": role})
	}
}

func bindRoomCode(c *gin.Context) (string, bool) {
	var req RoomRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return "", false
	}
	code, err := roomcode.Validate(req.RoomCode)
	if err != nil {
		fail(c, err)
		return "", false
	}
	return code, true
}

func lookupGame(c *gin.Context, sup *room.Supervisor, raw string) (*room.Game, bool) {
	code, err := roomcode.Validate(raw)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	g, ok := sup.Game(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no game running for this room"})
		return nil, false
	}
	return g, true
}
