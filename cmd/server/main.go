package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpapi "quest-rooms/internal/api/http"
	"quest-rooms/internal/api/ws"
	"quest-rooms/internal/config"
	"quest-rooms/internal/registry"
	"quest-rooms/internal/room"
)

// @title Quest Rooms API
// @version 1.0
// @description Room-based social deduction game server (Go + Gin)
// @BasePath /
func main() {
	_ = godotenv.Load()
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	cfg := config.Load()
	reg := registry.New()
	hub := ws.NewHub()
	sup := room.NewSupervisor(reg, hub, cfg.Timings)
	hub.SetRelay(sup)

	r := httpapi.NewRouter(sup, hub, cfg)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
