package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/parkdiscovery/internal/adapters/database"
	"github.com/zatekoja/parkdiscovery/internal/adapters/search"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/observability"
	"github.com/zatekoja/parkdiscovery/pkg/config"
)

const pageSize = 200

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.LoadWithSecrets(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("park-indexer", cfg.App.Env, cfg.App.LogLevel)

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			log.Fatal().Str("interval", intervalValue).Msg("interval must be a positive duration")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("interval", interval).Msg("reindex complete, waiting for next run")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Str("collection", typesense.ParksCollection).Msg("deleting search collection")
		if _, err := tsClient.Client().Collection(typesense.ParksCollection).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}

	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	parkRepo := database.NewParkAdapter(pgClient)
	index := search.NewTypesenseAdapter(tsClient)

	indexed, failed := 0, 0
	for offset := 0; ; offset += pageSize {
		parks, err := parkRepo.List(ctx, repositories.ParkFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return err
		}

		for _, park := range parks {
			if err := index.Index(ctx, park); err != nil {
				failed++
				log.Warn().Err(err).Str("park_id", park.ID).Msg("failed to index park")
				continue
			}
			indexed++
		}

		if len(parks) < pageSize {
			break
		}
	}

	log.Info().Int("indexed", indexed).Int("failed", failed).Msg("parks reindexed")
	return nil
}
