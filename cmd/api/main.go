package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/parkdiscovery/internal/adapters/cache"
	"github.com/zatekoja/parkdiscovery/internal/adapters/database"
	"github.com/zatekoja/parkdiscovery/internal/adapters/events"
	"github.com/zatekoja/parkdiscovery/internal/adapters/providers/geolocation"
	"github.com/zatekoja/parkdiscovery/internal/adapters/providers/imagehost"
	"github.com/zatekoja/parkdiscovery/internal/adapters/search"
	"github.com/zatekoja/parkdiscovery/internal/api/handlers"
	"github.com/zatekoja/parkdiscovery/internal/api/routes"
	"github.com/zatekoja/parkdiscovery/internal/application/services"
	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/auth"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/clients/redis"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/observability"
	"github.com/zatekoja/parkdiscovery/pkg/config"
)

func main() {
	cfg, err := config.LoadWithSecrets(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	if cfg.Database.AutoMigrate {
		if err := pgClient.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to apply database schema")
		}
	}

	// Redis is optional: without it parks are read straight from Postgres
	// and no events are broadcast.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without cache and events")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		defer func() {
			if err := eventBus.Close(); err != nil {
				log.Error().Err(err).Msg("error closing event bus")
			}
		}()
	}

	var searchRepo repositories.ParkSearchRepository
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, searching in Postgres")
		} else {
			if err := tsClient.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			searchRepo = search.NewTypesenseAdapter(tsClient)
		}
	}

	var geocoder providers.GeolocationProvider
	switch cfg.Geolocation.Provider {
	case "google":
		if cfg.Geolocation.APIKey == "" {
			log.Warn().Msg("GEOCODER_API_KEY is not set; using mock geolocation provider")
			geocoder = geolocation.NewMockGeolocationProvider()
		} else {
			geocoder = geolocation.NewGoogleGeolocationProvider(cfg.Geolocation.APIKey, cacheProvider)
		}
	default:
		geocoder = geolocation.NewMockGeolocationProvider()
	}

	images, err := imagehost.NewProvider(&cfg.ImageHost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize image host")
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session tokens")
	}

	parkRepo := database.NewParkAdapter(pgClient)
	if cacheProvider != nil {
		parkRepo = database.NewCachedParkAdapter(parkRepo, cacheProvider)
	}
	commentRepo := database.NewCommentAdapter(pgClient)
	reviewRepo := database.NewReviewAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)

	var invalidation *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		invalidation = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := invalidation.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
			invalidation = nil
		}
	}

	authService := services.NewAuthService(userRepo, tokens)
	parkService := services.NewParkService(parkRepo, commentRepo, reviewRepo, searchRepo, geocoder, images, eventBus, cfg.ImageHost.MaxBytes)
	commentService := services.NewCommentService(parkRepo, commentRepo, eventBus)
	reviewService := services.NewReviewService(parkRepo, reviewRepo, searchRepo, eventBus)

	router := routes.NewRouter(
		handlers.NewAuthHandler(authService, handlers.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}),
		handlers.NewParkHandler(parkService, cfg.ImageHost.MaxBytes),
		handlers.NewCommentHandler(commentService),
		handlers.NewReviewHandler(reviewService),
		routes.Options{
			Authenticator:  authService,
			CookieName:     cfg.Auth.CookieName,
			Comments:       commentRepo,
			Reviews:        reviewRepo,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Metrics:        metrics,
		},
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if invalidation != nil {
		invalidation.Stop()
	}
	log.Info().Msg("server stopped")
}
