package room

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"quest-rooms/internal/config"
)

// MaxPlayers is the fixed roster size; a game starts with exactly this many.
const MaxPlayers = 5

var nameRE = regexp.MustCompile(`^[A-Za-z0-9_ ]{4,12}$`)

// Lobby owns one room's pre-game roster. All state lives behind a single
// goroutine fed by the inbox, so no mutation ever races another; public
// methods block until the actor has applied their thunk.
type Lobby struct {
	code    string
	sup     *Supervisor
	bus     Broadcaster
	timings config.Timings

	inbox     chan func()
	done      chan struct{}
	closeOnce sync.Once

	// Actor-owned state below. Only the run goroutine touches it.
	participants map[string]*Participant
	order        []string // join order; becomes the game's fixed player order
	gameActive   bool

	countdown    *time.Timer
	countdownGen int
	idle         *time.Timer
	idleGen      int
}

func newLobby(sup *Supervisor, bus Broadcaster, timings config.Timings, code string) *Lobby {
	return &Lobby{
		code:         code,
		sup:          sup,
		bus:          bus,
		timings:      timings,
		inbox:        make(chan func(), 32),
		done:         make(chan struct{}),
		participants: make(map[string]*Participant),
	}
}

func (l *Lobby) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("room", l.code).Interface("panic", r).Msg("lobby actor crashed")
			l.shutdown()
		}
	}()

	log.Info().Str("room", l.code).Msg("lobby opened")
	l.armIdle()
	for {
		select {
		case fn := <-l.inbox:
			fn()
		case <-l.done:
			return
		}
	}
}

// shutdown releases every resource the actor owns: timers first, then the
// directory lease. Safe on every exit path, normal or not.
func (l *Lobby) shutdown() {
	l.closeOnce.Do(func() {
		l.cancelCountdown()
		l.cancelIdle()
		l.sup.lobbyGone(l)
		close(l.done)
	})
}

// post enqueues fn without waiting for a result. Used by timer callbacks
// and cross-actor notifications.
func (l *Lobby) post(fn func()) {
	select {
	case l.inbox <- fn:
	case <-l.done:
	}
}

// do runs fn inside the actor and returns its error to the caller.
func (l *Lobby) do(fn func() error) error {
	errc := make(chan error, 1)
	select {
	case l.inbox <- func() { errc <- fn() }:
	case <-l.done:
		return ErrRoomClosed
	}
	select {
	case err := <-errc:
		return err
	case <-l.done:
		return ErrRoomClosed
	}
}

// Join seats a new participant. Joining twice with the same id is a no-op.
func (l *Lobby) Join(id, name string) error {
	return l.do(func() error {
		if l.gameRunning() {
			return ErrGameInProgress
		}
		if _, seated := l.participants[id]; seated {
			return nil
		}
		name = strings.TrimSpace(name)
		if !nameRE.MatchString(name) {
			return ErrNameInvalid
		}
		for _, p := range l.participants {
			if strings.EqualFold(p.Name, name) {
				return ErrNameTaken
			}
		}
		if len(l.participants) >= MaxPlayers {
			return ErrLobbyFull
		}
		l.participants[id] = &Participant{ID: id, Name: name}
		l.order = append(l.order, id)
		l.cancelIdle()
		l.rosterChanged()
		return nil
	})
}

// Leave removes a participant and, if the lobby empties, arms the
// inactivity reaper.
func (l *Lobby) Leave(id string) error {
	return l.do(func() error {
		if _, seated := l.participants[id]; !seated {
			return ErrUnknownPlayer
		}
		delete(l.participants, id)
		for i, pid := range l.order {
			if pid == id {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
		l.rosterChanged()
		if len(l.participants) == 0 {
			l.armIdle()
		}
		return nil
	})
}

// ToggleReady flips a participant's ready flag.
func (l *Lobby) ToggleReady(id string) error {
	return l.do(func() error {
		p, seated := l.participants[id]
		if !seated {
			return ErrUnknownPlayer
		}
		p.Ready = !p.Ready
		l.rosterChanged()
		return nil
	})
}

// Snapshot returns the lobby's public state, or ErrRoomClosed once the
// actor has terminated.
func (l *Lobby) Snapshot() (LobbySnapshot, error) {
	var snap LobbySnapshot
	err := l.do(func() error {
		snap = l.snapshot()
		return nil
	})
	return snap, err
}

// gameEnded is posted by the supervisor when this room's game actor
// terminates; the lobby resets and resumes accepting joins.
func (l *Lobby) gameEnded() {
	l.post(func() {
		l.gameActive = false
		if len(l.participants) == 0 {
			l.armIdle()
		}
		l.publishState()
	})
}

// rosterChanged runs after every roster mutation. An armed countdown is
// always cancelled first so a stale countdown can never fire against a
// roster that no longer satisfies full-and-all-ready.
func (l *Lobby) rosterChanged() {
	l.cancelCountdown()
	if l.fullAndReady() {
		l.armCountdown()
		l.bus.Broadcast(l.code, "start_timer", map[string]interface{}{
			"seconds": int(l.timings.LobbyCountdown / time.Second),
		})
	}
	l.publishState()
}

// gameRunning reports whether this room already has a game. The local flag
// dies with the lobby actor, so a replacement lobby spawned while the game
// still runs consults the directory too.
func (l *Lobby) gameRunning() bool {
	if l.gameActive {
		return true
	}
	_, ok := l.sup.Game(l.code)
	return ok
}

func (l *Lobby) fullAndReady() bool {
	if len(l.participants) != MaxPlayers {
		return false
	}
	for _, p := range l.participants {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (l *Lobby) armCountdown() {
	l.countdownGen++
	gen := l.countdownGen
	l.countdown = time.AfterFunc(l.timings.LobbyCountdown, func() {
		l.post(func() { l.countdownFired(gen) })
	})
}

func (l *Lobby) cancelCountdown() {
	if l.countdown != nil {
		l.countdown.Stop()
		l.countdown = nil
	}
}

func (l *Lobby) countdownFired(gen int) {
	if gen != l.countdownGen || l.countdown == nil {
		return // superseded or cancelled after firing
	}
	l.countdown = nil

	// Re-validate: a mutation could have slipped in between the timer
	// firing and this thunk running.
	if !l.fullAndReady() {
		l.publishState()
		return
	}

	roster := l.frozenRoster()
	if _, err := l.sup.SpawnGame(l.code, roster); err != nil {
		log.Error().Str("room", l.code).Err(err).Msg("game handoff failed")
		l.bus.Broadcast(l.code, "error", map[string]interface{}{
			"message": "failed to start the game, try again",
		})
		l.publishState()
		return
	}

	l.gameActive = true
	l.participants = make(map[string]*Participant)
	l.order = nil
	l.bus.Broadcast(l.code, "game_started", map[string]interface{}{"code": l.code})
}

func (l *Lobby) armIdle() {
	l.idleGen++
	gen := l.idleGen
	l.idle = time.AfterFunc(l.timings.LobbyIdle, func() {
		l.post(func() { l.idleFired(gen) })
	})
}

func (l *Lobby) cancelIdle() {
	if l.idle != nil {
		l.idle.Stop()
		l.idle = nil
	}
}

func (l *Lobby) idleFired(gen int) {
	if gen != l.idleGen || l.idle == nil {
		return
	}
	l.idle = nil
	if len(l.participants) > 0 || l.gameActive {
		return
	}
	log.Info().Str("room", l.code).Msg("lobby idle, closing")
	l.shutdown()
}

func (l *Lobby) frozenRoster() []RosterEntry {
	roster := make([]RosterEntry, 0, len(l.order))
	for _, id := range l.order {
		p := l.participants[id]
		roster = append(roster, RosterEntry{ID: p.ID, Name: p.Name})
	}
	return roster
}

func (l *Lobby) snapshot() LobbySnapshot {
	snap := LobbySnapshot{
		Code:         l.code,
		Participants: make([]Participant, 0, len(l.order)),
		CountingDown: l.countdown != nil,
		GameActive:   l.gameActive,
	}
	for _, id := range l.order {
		snap.Participants = append(snap.Participants, *l.participants[id])
	}
	return snap
}

func (l *Lobby) publishState() {
	l.bus.Broadcast(l.code, "lobby_state", l.snapshot())
}
