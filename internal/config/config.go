package config

import (
	"os"
	"strconv"
	"time"
)

// Timings holds every wall-clock deadline the room actors arm. All of them
// are env-overridable, mostly so tests can shrink them.
type Timings struct {
	LobbyCountdown time.Duration // all-ready countdown before handoff
	LobbyIdle      time.Duration // empty-lobby reaper

	StageInit   time.Duration // pause between rounds
	StageParty  time.Duration // king picks the quest team
	StageVoting time.Duration // team approve/reject ballots
	StageQuest  time.Duration // mission assist/sabotage ballots
	StageReveal time.Duration // quest outcome on screen
}

type Config struct {
	HTTPAddr      string
	SessionSecret string
	Timings       Timings
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func Load() Config {
	return Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":"+strconv.Itoa(getenvInt("PORT", 8080))),
		SessionSecret: getenv("SESSION_SECRET", "quest-rooms-dev-secret"),
		Timings: Timings{
			LobbyCountdown: getenvDuration("LOBBY_COUNTDOWN", 5*time.Second),
			LobbyIdle:      getenvDuration("LOBBY_IDLE_TIMEOUT", 3*time.Minute),
			StageInit:      getenvDuration("STAGE_INIT", 3*time.Second),
			StageParty:     getenvDuration("STAGE_PARTY", 15*time.Second),
			StageVoting:    getenvDuration("STAGE_VOTING", 15*time.Second),
			StageQuest:     getenvDuration("STAGE_QUEST", 15*time.Second),
			StageReveal:    getenvDuration("STAGE_REVEAL", 5*time.Second),
		},
	}
}
