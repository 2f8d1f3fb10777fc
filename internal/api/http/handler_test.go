package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quest-rooms/internal/api/ws"
	"quest-rooms/internal/config"
	"quest-rooms/internal/registry"
	"quest-rooms/internal/room"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		HTTPAddr:      ":0",
		SessionSecret: "test-secret",
		Timings: config.Timings{
			LobbyCountdown: 30 * time.Millisecond,
			LobbyIdle:      time.Minute,
			StageInit:      10 * time.Millisecond,
			StageParty:     time.Second,
			StageVoting:    time.Second,
			StageQuest:     time.Second,
			StageReveal:    10 * time.Millisecond,
		},
	}
	hub := ws.NewHub()
	sup := room.NewSupervisor(registry.New(), hub, cfg.Timings)
	hub.SetRelay(sup)
	return NewRouter(sup, hub, cfg)
}

// doJSON sends a request, carrying over session cookies when given.
func doJSON(r *gin.Engine, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateRoom(t *testing.T) {
	r := testRouter()

	w := doJSON(r, "POST", "/create-room", `{"player_name":"alice"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode(t, w)
	code, _ := out["room_code"].(string)
	assert.Len(t, code, 6)

	lobby := out["lobby"].(map[string]interface{})
	assert.Len(t, lobby["participants"], 1)
}

func TestCreateRoomWithoutNameOpensEmptyLobby(t *testing.T) {
	r := testRouter()

	w := doJSON(r, "POST", "/create-room", `{}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	lobby := decode(t, w)["lobby"].(map[string]interface{})
	assert.Empty(t, lobby["participants"])
}

func TestJoinRejectsBadInput(t *testing.T) {
	r := testRouter()

	w := doJSON(r, "POST", "/join", `{"room_code":"nope","player_name":"alice"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "malformed room code")

	w = doJSON(r, "POST", "/join", `{"room_code":"ABC234","player_name":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "name too short")
}

func TestJoinNormalizesRoomCode(t *testing.T) {
	r := testRouter()

	w := doJSON(r, "POST", "/join", `{"room_code":" abc234 ","player_name":"alice"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ABC234", decode(t, w)["room_code"])
}

func TestReadyFlowWithSession(t *testing.T) {
	r := testRouter()

	w := doJSON(r, "POST", "/create-room", `{"player_name":"alice"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	code := decode(t, w)["room_code"].(string)

	// Same session toggles ready; a fresh session is not seated.
	w = doJSON(r, "POST", "/ready", `{"room_code":"`+code+`"}`, cookies)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, "POST", "/ready", `{"room_code":"`+code+`"}`, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, "GET", "/room-state?room_code="+code, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	lobby := decode(t, w)["lobby"].(map[string]interface{})
	participants := lobby["participants"].([]interface{})
	require.Len(t, participants, 1)
	assert.Equal(t, true, participants[0].(map[string]interface{})["ready"])
}

func TestReadyUnknownRoom(t *testing.T) {
	r := testRouter()
	w := doJSON(r, "POST", "/ready", `{"room_code":"ZZZZZZ"}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoteEnumValidation(t *testing.T) {
	r := testRouter()

	w := doJSON(r, "POST", "/team-vote", `{"room_code":"ABC234","vote":"maybe"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "POST", "/mission-vote", `{"room_code":"ABC234","vote":"approve"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGameEndpointsWithoutGame(t *testing.T) {
	r := testRouter()

	w := doJSON(r, "POST", "/team-vote", `{"room_code":"ABC234","vote":"approve"}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, "GET", "/my-role?room_code=ABC234", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoomsListing(t *testing.T) {
	r := testRouter()

	w := doJSON(r, "POST", "/create-room", `{"player_name":"alice"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	code := decode(t, w)["room_code"].(string)

	w = doJSON(r, "GET", "/rooms", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rooms := decode(t, w)["rooms"].([]interface{})
	require.Len(t, rooms, 1)
	assert.Equal(t, code, rooms[0].(map[string]interface{})["code"])
}

func TestRoomStateUnknownRoom(t *testing.T) {
	r := testRouter()
	w := doJSON(r, "GET", "/room-state?room_code=ZZZZZZ", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimingsEndpoint(t *testing.T) {
	r := testRouter()
	w := doJSON(r, "GET", "/config/timings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, float64(30), out["lobby_countdown_ms"])
	assert.Equal(t, float64(10), out["stage_init_ms"])
}

func TestHealth(t *testing.T) {
	r := testRouter()
	w := doJSON(r, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
