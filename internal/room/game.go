package room

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"quest-rooms/internal/config"
	"quest-rooms/internal/metrics"
)

// Game owns one room's in-game state and drives the stage machine:
//
//	init -> party_assembling -> voting -> quest -> quest_reveal -> init ...
//
// until a win condition ends it. Each timed stage arms exactly one timer;
// the timer is a deadline, not a driver — collecting everything a stage
// waits for cancels the timer and advances immediately. Like the lobby, a
// single goroutine applies thunks from the inbox, so state is never touched
// concurrently.
type Game struct {
	code    string
	sup     *Supervisor
	bus     Broadcaster
	timings config.Timings

	inbox     chan func()
	done      chan struct{}
	closeOnce sync.Once

	// Actor-owned state below.
	players    []*Player // order frozen at creation
	stage      Stage
	outcomes   []Outcome
	teamVotes  map[string]TeamVote
	questVotes map[string]QuestVote
	rejections int
	winner     Team
	kingIdx    int

	timer    *time.Timer
	timerGen int
}

func newGame(sup *Supervisor, bus Broadcaster, timings config.Timings, code string, roster []RosterEntry) *Game {
	g := &Game{
		code:    code,
		sup:     sup,
		bus:     bus,
		timings: timings,
		inbox:   make(chan func(), 64),
		done:    make(chan struct{}),
		players: assignRoles(roster),
		stage:   StageInit,
	}
	g.players[g.kingIdx].IsKing = true
	return g
}

func (g *Game) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("room", g.code).Interface("panic", r).Msg("game actor crashed")
			g.bus.Broadcast(g.code, "error", map[string]interface{}{
				"message": "the game crashed, the room is closed",
			})
			g.shutdown()
		}
	}()

	log.Info().Str("room", g.code).Int("players", len(g.players)).Msg("game started")
	metrics.GamesStarted.Inc()
	g.enterInit()

	for {
		select {
		case fn := <-g.inbox:
			fn()
		case <-g.done:
			return
		}
	}
}

func (g *Game) shutdown() {
	g.closeOnce.Do(func() {
		g.cancelStageTimer()
		g.sup.gameGone(g)
		close(g.done)
	})
}

func (g *Game) post(fn func()) {
	select {
	case g.inbox <- fn:
	case <-g.done:
	}
}

func (g *Game) do(fn func() error) error {
	errc := make(chan error, 1)
	select {
	case g.inbox <- func() { errc <- fn() }:
	case <-g.done:
		return ErrRoomClosed
	}
	select {
	case err := <-errc:
		return err
	case <-g.done:
		return ErrRoomClosed
	}
}

// ---- operations ----

// ToggleQuestMember lets the current king add or drop a quest member during
// party assembly. Reaching the round's required size advances to voting at
// once.
func (g *Game) ToggleQuestMember(kingID, targetID string) error {
	return g.do(func() error {
		if g.stage != StageParty {
			return ErrWrongStage
		}
		if g.players[g.kingIdx].ID != kingID {
			log.Warn().Str("room", g.code).Str("player", kingID).Msg("non-king tried to edit the quest team")
			return ErrNotKing
		}
		target := g.playerByID(targetID)
		if target == nil {
			return ErrUnknownPlayer
		}
		if target.OnQuest {
			target.OnQuest = false
			g.publishState()
			return nil
		}
		required := requiredTeamSize(len(g.outcomes))
		if g.teamSize() >= required {
			return ErrTeamFull
		}
		target.OnQuest = true
		if g.teamSize() == required {
			g.cancelStageTimer()
			g.enterVoting()
			return nil
		}
		g.publishState()
		return nil
	})
}

// VoteForTeam records a player's approve/reject ballot on the proposed
// team. Re-voting overwrites. The last missing ballot closes the stage
// before its deadline.
func (g *Game) VoteForTeam(playerID string, vote TeamVote) error {
	return g.do(func() error {
		if g.stage != StageVoting {
			return ErrWrongStage
		}
		if g.playerByID(playerID) == nil {
			return ErrUnknownPlayer
		}
		g.teamVotes[playerID] = vote
		if len(g.teamVotes) == len(g.players) {
			g.cancelStageTimer()
			g.closeTeamVote()
			return nil
		}
		g.bus.Broadcast(g.code, "team_vote_cast", map[string]interface{}{
			"votes_cast":  len(g.teamVotes),
			"votes_total": len(g.players),
		})
		return nil
	})
}

// VoteForMission records an assist/sabotage ballot from a quest member.
func (g *Game) VoteForMission(playerID string, vote QuestVote) error {
	return g.do(func() error {
		if g.stage != StageQuest {
			return ErrWrongStage
		}
		p := g.playerByID(playerID)
		if p == nil {
			return ErrUnknownPlayer
		}
		if !p.OnQuest {
			log.Warn().Str("room", g.code).Str("player", playerID).Msg("non-member tried to vote on the mission")
			return ErrNotOnQuest
		}
		g.questVotes[playerID] = vote
		if len(g.questVotes) == g.teamSize() {
			g.cancelStageTimer()
			g.closeQuestVote()
			return nil
		}
		g.bus.Broadcast(g.code, "mission_vote_cast", map[string]interface{}{
			"votes_cast":  len(g.questVotes),
			"votes_total": g.teamSize(),
		})
		return nil
	})
}

// Message fans a chat line out to the room. No state changes.
func (g *Game) Message(playerID, text string) error {
	return g.do(func() error {
		p := g.playerByID(playerID)
		if p == nil {
			return ErrUnknownPlayer
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return ErrEmptyText
		}
		g.bus.Broadcast(g.code, "chat", map[string]interface{}{
			"from": p.Name,
			"text": text,
		})
		return nil
	})
}

// RemovePlayer drops a player from the game and re-evaluates the role
// balance: bad outnumbering good ends the game for Bad, no bad players
// left ends it for Good, an empty roster closes the room.
func (g *Game) RemovePlayer(playerID string) error {
	return g.do(func() error {
		idx := -1
		for i, p := range g.players {
			if p.ID == playerID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrUnknownPlayer
		}
		wasKing := idx == g.kingIdx
		g.players = append(g.players[:idx], g.players[idx+1:]...)
		delete(g.teamVotes, playerID)
		delete(g.questVotes, playerID)

		if len(g.players) == 0 {
			log.Info().Str("room", g.code).Msg("last player left, closing game")
			g.bus.Broadcast(g.code, "room_closed", map[string]interface{}{"code": g.code})
			g.shutdown()
			return nil
		}

		if idx < g.kingIdx {
			g.kingIdx--
		}
		if wasKing {
			g.kingIdx = g.kingIdx % len(g.players)
			g.players[g.kingIdx].IsKing = true
		}

		bad, good := 0, 0
		for _, p := range g.players {
			if p.Role == TeamBad {
				bad++
			} else {
				good++
			}
		}
		switch {
		case bad == 0:
			g.finish(TeamGood)
			return nil
		case bad > good:
			g.finish(TeamBad)
			return nil
		}

		// The departed player may have been the last missing ballot.
		switch g.stage {
		case StageVoting:
			if len(g.teamVotes) >= len(g.players) {
				g.cancelStageTimer()
				g.closeTeamVote()
				return nil
			}
		case StageQuest:
			if n := g.teamSize(); n > 0 && len(g.questVotes) >= n {
				g.cancelStageTimer()
				g.closeQuestVote()
				return nil
			}
		}
		g.publishState()
		return nil
	})
}

// RoleOf returns a player's secret role for the per-player role endpoint.
func (g *Game) RoleOf(playerID string) (Team, error) {
	var role Team
	err := g.do(func() error {
		p := g.playerByID(playerID)
		if p == nil {
			return ErrUnknownPlayer
		}
		role = p.Role
		return nil
	})
	return role, err
}

// Snapshot returns the game's public state, or ErrRoomClosed once the
// actor has terminated.
func (g *Game) Snapshot() (GameSnapshot, error) {
	var snap GameSnapshot
	err := g.do(func() error {
		snap = g.snapshot()
		return nil
	})
	return snap, err
}

// ---- stage transitions (actor goroutine only) ----

func (g *Game) enterInit() {
	g.stage = StageInit
	g.teamVotes = nil
	g.questVotes = nil
	for _, p := range g.players {
		p.OnQuest = false
	}
	g.publishState()
	g.armStageTimer(g.timings.StageInit)
}

func (g *Game) nextRound() {
	g.rotateKing()
	g.enterInit()
}

func (g *Game) rotateKing() {
	g.players[g.kingIdx].IsKing = false
	g.kingIdx = (g.kingIdx + 1) % len(g.players)
	g.players[g.kingIdx].IsKing = true
}

func (g *Game) enterParty() {
	g.stage = StageParty
	g.publishState()
	g.armStageTimer(g.timings.StageParty)
}

func (g *Game) enterVoting() {
	g.stage = StageVoting
	g.teamVotes = make(map[string]TeamVote)
	g.publishState()
	g.armStageTimer(g.timings.StageVoting)
}

func (g *Game) closeTeamVote() {
	if teamApproved(g.teamVotes) {
		g.bus.Broadcast(g.code, "team_approved", map[string]interface{}{
			"votes_cast": len(g.teamVotes),
		})
		g.enterQuest()
		return
	}
	g.rejections++
	g.bus.Broadcast(g.code, "team_rejected", map[string]interface{}{
		"rejections": g.rejections,
	})
	// Sole check site for the four-rejections loss; nothing else may
	// re-derive it.
	if g.rejections >= 4 {
		g.finish(TeamBad)
		return
	}
	g.nextRound()
}

func (g *Game) enterQuest() {
	g.stage = StageQuest
	g.questVotes = make(map[string]QuestVote)
	g.publishState()
	g.armStageTimer(g.timings.StageQuest)
}

func (g *Game) closeQuestVote() {
	outcome := questOutcome(g.questVotes)
	g.outcomes = append(g.outcomes, outcome)

	sabotages := 0
	for _, v := range g.questVotes {
		if v == VoteSabotage {
			sabotages++
		}
	}

	g.stage = StageReveal
	g.bus.Broadcast(g.code, "quest_result", map[string]interface{}{
		"outcome":        outcome,
		"sabotages":      sabotages,
		"quest_outcomes": g.outcomes,
	})
	g.publishState()

	if countOutcomes(g.outcomes, OutcomeFail) >= 3 {
		g.finish(TeamBad)
		return
	}
	if countOutcomes(g.outcomes, OutcomeSuccess) >= 3 {
		g.finish(TeamGood)
		return
	}
	g.armStageTimer(g.timings.StageReveal)
}

func (g *Game) finish(winner Team) {
	g.cancelStageTimer()
	g.stage = StageEnd
	g.winner = winner
	if winner == TeamGood {
		metrics.GoodTeamWins.Inc()
	} else {
		metrics.BadTeamWins.Inc()
	}
	log.Info().Str("room", g.code).Str("winner", string(winner)).Msg("game over")
	g.bus.Broadcast(g.code, "game_over", map[string]interface{}{
		"winner": winner,
		"roles":  g.roles(),
	})
	g.shutdown()
}

// ---- timers ----

// armStageTimer arms the current stage's deadline. The generation counter
// makes a callback that fired concurrently with its cancellation a no-op.
func (g *Game) armStageTimer(d time.Duration) {
	g.timerGen++
	gen := g.timerGen
	stage := g.stage
	g.timer = time.AfterFunc(d, func() {
		g.post(func() { g.stageTimedOut(gen, stage) })
	})
}

func (g *Game) cancelStageTimer() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *Game) stageTimedOut(gen int, stage Stage) {
	if gen != g.timerGen || g.timer == nil || stage != g.stage {
		return // stale deadline, its stage already ended
	}
	g.timer = nil
	switch stage {
	case StageInit:
		g.enterParty()
	case StageParty:
		// Deadline with a complete team should not happen (completion
		// advances immediately) but is honored; an incomplete team is a
		// rejection-free reset.
		if g.teamSize() == requiredTeamSize(len(g.outcomes)) {
			g.enterVoting()
		} else {
			g.nextRound()
		}
	case StageVoting:
		g.closeTeamVote()
	case StageQuest:
		g.closeQuestVote()
	case StageReveal:
		g.nextRound()
	}
}

// ---- helpers (actor goroutine only) ----

func (g *Game) playerByID(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) teamSize() int {
	n := 0
	for _, p := range g.players {
		if p.OnQuest {
			n++
		}
	}
	return n
}

func (g *Game) roles() map[string]Team {
	m := make(map[string]Team, len(g.players))
	for _, p := range g.players {
		m[p.ID] = p.Role
	}
	return m
}

func (g *Game) snapshot() GameSnapshot {
	snap := GameSnapshot{
		Code:             g.code,
		Stage:            g.stage,
		Players:          make([]PlayerPublic, 0, len(g.players)),
		Round:            len(g.outcomes),
		RequiredTeamSize: requiredTeamSize(len(g.outcomes)),
		QuestOutcomes:    append([]Outcome(nil), g.outcomes...),
		TeamRejections:   g.rejections,
		Winner:           g.winner,
	}
	for _, p := range g.players {
		voted := false
		switch g.stage {
		case StageVoting:
			_, voted = g.teamVotes[p.ID]
		case StageQuest:
			_, voted = g.questVotes[p.ID]
		}
		snap.Players = append(snap.Players, PlayerPublic{
			ID:       p.ID,
			Name:     p.Name,
			IsKing:   p.IsKing,
			OnQuest:  p.OnQuest,
			HasVoted: voted,
		})
	}
	if g.stage == StageEnd {
		snap.Roles = g.roles()
	}
	return snap
}

func (g *Game) publishState() {
	g.bus.Broadcast(g.code, "game_state", g.snapshot())
}
