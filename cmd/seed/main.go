package main

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/parkdiscovery/internal/adapters/database"
	"github.com/zatekoja/parkdiscovery/internal/adapters/providers/geolocation"
	"github.com/zatekoja/parkdiscovery/internal/adapters/providers/imagehost"
	"github.com/zatekoja/parkdiscovery/internal/application/services"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/auth"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/observability"
	"github.com/zatekoja/parkdiscovery/pkg/config"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

const (
	demoUsername = "parkdemo"
	demoPassword = "parkdemo-password"
)

// 1x1 transparent GIF
var placeholderImage = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0xff, 0xff, 0xff,
	0x00, 0x00, 0x00, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

var sampleParks = []services.ParkInput{
	{Name: "Stanley Park", Location: "Vancouver", Description: "Seawall, old-growth forest and beaches at the edge of downtown."},
	{Name: "Central Park", Location: "New York", Description: "Meadows, lakes and woodland in the middle of Manhattan."},
	{Name: "Hyde Park", Location: "London", Description: "Royal park with the Serpentine lake and Speakers' Corner."},
	{Name: "Ueno Park", Location: "Tokyo", Description: "Museums, a zoo and cherry blossoms in spring."},
	{Name: "Kings Park", Location: "Perth", Description: "Botanic garden and bushland overlooking the Swan River."},
}

func main() {
	cfg, err := config.LoadWithSecrets(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("park-seed", cfg.App.Env, cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	if err := pgClient.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Warn().Msg("RESET_DB=true detected, truncating tables")
		if _, err := pgClient.DB().ExecContext(ctx, "TRUNCATE reviews, comments, parks, users"); err != nil {
			log.Fatal().Err(err).Msg("failed to truncate tables")
		}
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session tokens")
	}

	images, err := imagehost.NewLocalProvider(cfg.ImageHost.LocalDir, cfg.ImageHost.LocalBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize local image store")
	}

	parkRepo := database.NewParkAdapter(pgClient)
	commentRepo := database.NewCommentAdapter(pgClient)
	reviewRepo := database.NewReviewAdapter(pgClient)

	authService := services.NewAuthService(database.NewUserAdapter(pgClient), tokens)
	parkService := services.NewParkService(parkRepo, commentRepo, reviewRepo, nil,
		geolocation.NewMockGeolocationProvider(), images, nil, cfg.ImageHost.MaxBytes)

	owner, err := demoOwner(ctx, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare demo owner")
	}

	created := 0
	for _, input := range sampleParks {
		input.Image = &providers.ImageUpload{
			Filename: "placeholder.gif",
			Size:     int64(len(placeholderImage)),
			Content:  bytes.NewReader(placeholderImage),
		}
		park, err := parkService.Create(ctx, owner, input)
		if err != nil {
			log.Error().Err(err).Str("park", input.Name).Msg("failed to seed park")
			continue
		}
		created++
		log.Info().Str("park_id", park.ID).Str("name", park.Name).Msg("seeded park")
	}

	log.Info().Int("parks", created).Str("owner", owner.Username).Msg("seed complete")
}

// demoOwner signs the demo user up, or logs in when it already exists
func demoOwner(ctx context.Context, authService *services.AuthService) (*entities.Actor, error) {
	session, err := authService.Signup(ctx, demoUsername, demoPassword)
	if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
		session, err = authService.Login(ctx, demoUsername, demoPassword)
	}
	if err != nil {
		return nil, err
	}
	return &entities.Actor{UserID: session.User.ID, Username: session.User.Username}, nil
}
