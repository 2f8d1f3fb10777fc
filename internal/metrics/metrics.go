// Package metrics exposes the fire-and-forget game counters. Incrementing a
// prometheus counter cannot fail, so the core calls these without caring
// whether anything is scraping them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GamesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quest_rooms_games_started_total",
			Help: "Games handed off from a lobby",
		},
	)

	GoodTeamWins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quest_rooms_good_team_wins_total",
			Help: "Games won by the good team",
		},
	)

	BadTeamWins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quest_rooms_bad_team_wins_total",
			Help: "Games won by the bad team",
		},
	)

	ActiveRooms = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quest_rooms_active_rooms",
			Help: "Live room actors by role",
		},
		[]string{"role"},
	)
)
