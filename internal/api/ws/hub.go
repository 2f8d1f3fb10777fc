package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"quest-rooms/internal/roomcode"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

// Hub is the broadcast bus: one private topic per room code, fanned out to
// the websocket subscribers of that room. Delivery is at-most-once with no
// replay; clients pull a snapshot over HTTP before subscribing. Publishing
// never blocks: each subscriber has its own outbound queue and writer
// goroutine, and a subscriber whose queue is full is cut loose instead of
// stalling the publisher.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*subscriber]struct{}
	relay ChatRelay
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*subscriber]struct{})}
}

// SetRelay wires the inbound chat sink after construction; the hub is built
// before the supervisor because the supervisor broadcasts through it.
func (h *Hub) SetRelay(relay ChatRelay) {
	h.relay = relay
}

// subscriber owns one connection's outbound queue. Only its writer goroutine
// touches the conn for writes; publishers just enqueue.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func (s *subscriber) writePump() {
	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = s.conn.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// HandleWS subscribes the connection to its room's topic. The read loop
// only accepts chat frames; every state-changing action goes through HTTP
// where identity comes from the session.
func (h *Hub) HandleWS(playerID func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, err := roomcode.Validate(c.Query("room_code"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		pid := playerID(c)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		sub := &subscriber{
			conn: conn,
			send: make(chan []byte, sendBuffer),
			done: make(chan struct{}),
		}
		h.mu.Lock()
		if _, ok := h.rooms[code]; !ok {
			h.rooms[code] = make(map[*subscriber]struct{})
		}
		h.rooms[code][sub] = struct{}{}
		h.mu.Unlock()
		go sub.writePump()

		defer func() {
			h.mu.Lock()
			delete(h.rooms[code], sub)
			if len(h.rooms[code]) == 0 {
				delete(h.rooms, code)
			}
			h.mu.Unlock()
			close(sub.done)
			_ = conn.Close()
		}()

		for {
			var msg struct {
				Action string          `json:"action"`
				Data   json.RawMessage `json:"data"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg.Action {
			case "chat":
				h.handleChat(code, pid, msg.Data)
			default:
				log.Debug().Str("action", msg.Action).Msg("ignoring unknown websocket action")
			}
		}
	}
}

// Broadcast publishes an event on the room's topic. The payload is queued
// per subscriber and written by that subscriber's own goroutine, so the
// caller returns without ever waiting on a socket. A subscriber that has
// fallen a full queue behind gets its connection closed; its read loop then
// removes it from the room.
func (h *Hub) Broadcast(roomCode string, action string, data interface{}) {
	payload, err := json.Marshal(map[string]interface{}{
		"action": action,
		"data":   data,
	})
	if err != nil {
		log.Error().Str("room", roomCode).Str("action", action).Err(err).Msg("dropping unmarshalable broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.rooms[roomCode] {
		select {
		case sub.send <- payload:
		default:
			log.Debug().Str("room", roomCode).Msg("dropping slow subscriber")
			_ = sub.conn.Close()
		}
	}
}

func (h *Hub) handleChat(code, playerID string, raw json.RawMessage) {
	if h.relay == nil {
		return
	}
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	if err := h.relay.Message(code, playerID, payload.Text); err != nil {
		log.Debug().Str("room", code).Err(err).Msg("chat rejected")
	}
}
