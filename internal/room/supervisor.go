package room

import (
	"github.com/rs/zerolog/log"

	"quest-rooms/internal/config"
	"quest-rooms/internal/metrics"
	"quest-rooms/internal/registry"
)

// Supervisor spawns and tracks the per-room actors. Each actor runs in its
// own goroutine with its own recover, so one room's failure never reaches
// another room, the registry, or the supervisor. Actors that exit — normally
// or not — release their directory lease themselves; nothing is restarted
// with old state, a later EnsureLobby simply builds a fresh empty actor.
type Supervisor struct {
	reg     *registry.Registry
	bus     Broadcaster
	timings config.Timings
}

func NewSupervisor(reg *registry.Registry, bus Broadcaster, timings config.Timings) *Supervisor {
	return &Supervisor{reg: reg, bus: bus, timings: timings}
}

// EnsureLobby returns the lobby actor for code, spawning one if none is
// registered. Losing the registration race just means another caller's
// lobby is used.
func (s *Supervisor) EnsureLobby(code string) *Lobby {
	for {
		if h, ok := s.reg.Lookup(registry.RoleLobby, code); ok {
			return h.(*Lobby)
		}
		l := newLobby(s, s.bus, s.timings, code)
		if s.reg.Register(registry.RoleLobby, code, l) {
			metrics.ActiveRooms.WithLabelValues(string(registry.RoleLobby)).Inc()
			go l.run()
			return l
		}
		// Lost the race; loop picks up the winner (or retries if the
		// winner terminated in between).
	}
}

// Lobby returns the registered lobby actor for code, if any.
func (s *Supervisor) Lobby(code string) (*Lobby, bool) {
	h, ok := s.reg.Lookup(registry.RoleLobby, code)
	if !ok {
		return nil, false
	}
	return h.(*Lobby), true
}

// SpawnGame starts a game actor for code with the frozen lobby roster. A
// second game for the same code is refused loudly.
func (s *Supervisor) SpawnGame(code string, roster []RosterEntry) (*Game, error) {
	g := newGame(s, s.bus, s.timings, code, roster)
	if !s.reg.Register(registry.RoleGame, code, g) {
		return nil, ErrGameExists
	}
	metrics.ActiveRooms.WithLabelValues(string(registry.RoleGame)).Inc()
	go g.run()
	return g, nil
}

// Game returns the registered game actor for code, if any.
func (s *Supervisor) Game(code string) (*Game, bool) {
	h, ok := s.reg.Lookup(registry.RoleGame, code)
	if !ok {
		return nil, false
	}
	return h.(*Game), true
}

// Rooms snapshots every registered room for the listing endpoint. Rooms
// terminating mid-enumeration are skipped, not errors.
func (s *Supervisor) Rooms() []RoomInfo {
	infos := make(map[string]*RoomInfo)
	var order []string

	for _, code := range s.reg.Codes(registry.RoleLobby) {
		l, ok := s.Lobby(code)
		if !ok {
			continue
		}
		snap, err := l.Snapshot()
		if err != nil {
			continue
		}
		infos[code] = &RoomInfo{Code: code, Lobby: &snap}
		order = append(order, code)
	}
	for _, code := range s.reg.Codes(registry.RoleGame) {
		g, ok := s.Game(code)
		if !ok {
			continue
		}
		snap, err := g.Snapshot()
		if err != nil {
			continue
		}
		if info, dup := infos[code]; dup {
			info.Game = &snap
			continue
		}
		infos[code] = &RoomInfo{Code: code, Game: &snap}
		order = append(order, code)
	}

	out := make([]RoomInfo, 0, len(order))
	for _, code := range order {
		out = append(out, *infos[code])
	}
	return out
}

// Message relays a chat line to the room's game actor. Chat only exists
// once a game is running.
func (s *Supervisor) Message(code, playerID, text string) error {
	g, ok := s.Game(code)
	if !ok {
		return ErrRoomClosed
	}
	return g.Message(playerID, text)
}

// gameGone releases a terminated game's lease and lets the room's lobby
// resume accepting joins.
func (s *Supervisor) gameGone(g *Game) {
	s.reg.Release(registry.RoleGame, g.code, g)
	metrics.ActiveRooms.WithLabelValues(string(registry.RoleGame)).Dec()
	if l, ok := s.Lobby(g.code); ok {
		l.gameEnded()
	}
}

// lobbyGone releases a terminated lobby's lease.
func (s *Supervisor) lobbyGone(l *Lobby) {
	s.reg.Release(registry.RoleLobby, l.code, l)
	metrics.ActiveRooms.WithLabelValues(string(registry.RoleLobby)).Dec()
	log.Debug().Str("room", l.code).Msg("lobby released")
}
