package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tidal-recall/internal/config"
	"github.com/robalobadob/tidal-recall/internal/httpserver"
	"github.com/robalobadob/tidal-recall/internal/runs"
	"github.com/robalobadob/tidal-recall/internal/store"
	"github.com/robalobadob/tidal-recall/internal/treasures"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	catalog, err := treasures.Load(cfg.TreasuresFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load treasure catalog")
	}
	log.Info().Int("treasures", catalog.Count()).Msg("catalog loaded")

	opts := httpserver.Options{
		Store:        store.NewMemoryStore(),
		Catalog:      catalog,
		ClientOrigin: cfg.ClientOrigin,
		TokenSecret:  cfg.TokenSecret,
		TokenTTL:     cfg.TokenTTL,
		CookieName:   cfg.CookieName,
		Secure:       cfg.Production,
	}
	if cfg.DatabasePath != "" {
		rl, err := runs.Open(context.Background(), cfg.DatabasePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open run log")
		}
		defer rl.Close()
		opts.Runs = rl
		log.Info().Str("path", cfg.DatabasePath).Msg("run log enabled")
	}

	srv := httpserver.New(opts)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go srv.Janitor(ctx, cfg.SweepInterval)

	log.Info().Str("port", cfg.Port).Msg("starting tidal-recall")
	if err := srv.Start(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
