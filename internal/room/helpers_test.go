package room

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quest-rooms/internal/config"
	"quest-rooms/internal/registry"
)

// fakeBus records everything the actors publish.
type fakeBus struct {
	mu     sync.Mutex
	events []busEvent
}

type busEvent struct {
	Room   string
	Action string
	Data   interface{}
}

func (b *fakeBus) Broadcast(roomCode, action string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, busEvent{Room: roomCode, Action: action, Data: data})
}

func (b *fakeBus) count(action string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Action == action {
			n++
		}
	}
	return n
}

func (b *fakeBus) last(action string) (busEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].Action == action {
			return b.events[i], true
		}
	}
	return busEvent{}, false
}

// testTimings keeps the deadlines generous enough that early completion,
// not a timer, drives every scripted transition.
func testTimings() config.Timings {
	return config.Timings{
		LobbyCountdown: 30 * time.Millisecond,
		LobbyIdle:      60 * time.Millisecond,
		StageInit:      10 * time.Millisecond,
		StageParty:     500 * time.Millisecond,
		StageVoting:    500 * time.Millisecond,
		StageQuest:     500 * time.Millisecond,
		StageReveal:    10 * time.Millisecond,
	}
}

func newTestSupervisor(timings config.Timings) (*Supervisor, *fakeBus) {
	bus := &fakeBus{}
	return NewSupervisor(registry.New(), bus, timings), bus
}

func testRoster(n int) []RosterEntry {
	roster := make([]RosterEntry, 0, n)
	for i := 0; i < n; i++ {
		roster = append(roster, RosterEntry{
			ID:   fmt.Sprintf("id-%d", i),
			Name: fmt.Sprintf("player %d", i),
		})
	}
	return roster
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func waitStage(t *testing.T, g *Game, stage Stage) GameSnapshot {
	t.Helper()
	var snap GameSnapshot
	waitFor(t, 2*time.Second, func() bool {
		s, err := g.Snapshot()
		if err != nil {
			return false
		}
		snap = s
		return s.Stage == stage
	}, fmt.Sprintf("stage %s", stage))
	return snap
}

func kingOf(t *testing.T, snap GameSnapshot) string {
	t.Helper()
	for _, p := range snap.Players {
		if p.IsKing {
			return p.ID
		}
	}
	t.Fatal("no king in snapshot")
	return ""
}

// rigRoles overwrites the random assignment for tests that depend on a
// specific balance.
func rigRoles(t *testing.T, g *Game, roles map[string]Team) {
	t.Helper()
	require.NoError(t, g.do(func() error {
		for _, p := range g.players {
			p.Role = roles[p.ID]
		}
		return nil
	}))
}

// playQuestRound scripts one full round: the king assembles a team of the
// required size, everyone approves it, and the team votes on the mission.
func playQuestRound(t *testing.T, g *Game, sabotage bool) {
	t.Helper()
	snap := waitStage(t, g, StageParty)
	king := kingOf(t, snap)

	team := make([]string, 0, snap.RequiredTeamSize)
	for _, p := range snap.Players[:snap.RequiredTeamSize] {
		team = append(team, p.ID)
	}
	for _, id := range team {
		require.NoError(t, g.ToggleQuestMember(king, id))
	}

	snap = waitStage(t, g, StageVoting)
	for _, p := range snap.Players {
		require.NoError(t, g.VoteForTeam(p.ID, VoteApprove))
	}

	waitStage(t, g, StageQuest)
	for i, id := range team {
		vote := VoteAssist
		if sabotage && i == 0 {
			vote = VoteSabotage
		}
		if err := g.VoteForMission(id, vote); err != nil {
			// The last ballot may close the game before later calls land.
			require.ErrorIs(t, err, ErrRoomClosed)
		}
	}
}
