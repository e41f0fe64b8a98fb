package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/floorquote/backend/internal/ai"
	"github.com/floorquote/backend/internal/archive"
	"github.com/floorquote/backend/internal/config"
	"github.com/floorquote/backend/internal/db"
	"github.com/floorquote/backend/internal/geocode"
	httpapi "github.com/floorquote/backend/internal/http"
	"github.com/floorquote/backend/internal/http/handlers"
	"github.com/floorquote/backend/internal/models"
	"github.com/floorquote/backend/internal/service"
	"github.com/floorquote/backend/internal/session"
	"github.com/floorquote/backend/internal/storage"
)

const (
	// extracted exports may be several times the upload size once decompressed
	extractionFactor = 4
	maxArchiveFiles  = 2000
	sweepInterval    = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "floorquote-backend").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var analyzer ai.Analyzer
	if cfg.MockAI {
		analyzer = ai.MockAnalyzer{}
		logger.Info().Msg("using mock image analyzer")
	} else {
		analyzer = ai.NewAnalyzer(ai.OpenAIConfig{
			APIKey:          cfg.OpenAIKey,
			BaseURL:         cfg.OpenAIBaseURL,
			Model:           cfg.OpenAIModel,
			MaxOutputTokens: cfg.ModelMaxTokens,
			Timeout:         cfg.ModelTimeout,
		}, logger)
	}

	pipeline := &service.Pipeline{
		Analyzer:    analyzer,
		Operator:    cfg.OperatorName,
		Concurrency: cfg.AnalyzeConcurrency,
		Archive: archive.Options{
			TempDir:       os.TempDir(),
			MaxTotalBytes: (cfg.MaxUploadSizeMB << 20) * extractionFactor,
			MaxFiles:      maxArchiveFiles,
		},
		Logger: logger,
	}
	if cfg.GeocodeEnabled {
		pipeline.Enricher = &geocode.Enricher{
			Geocoder: &geocode.NominatimGeocoder{
				BaseURL:     cfg.GeocodeBaseURL,
				UserAgent:   "floorquote-backend",
				Language:    "ru",
				MinInterval: time.Second,
				Client:      &http.Client{Timeout: 10 * time.Second},
			},
			Country: cfg.GeocodeCountry,
			BaseLat: cfg.BaseLat,
			BaseLon: cfg.BaseLon,
		}
		logger.Info().Str("country", cfg.GeocodeCountry).Msg("address enrichment enabled")
	}

	h := &handlers.Handler{
		Pipeline: pipeline,
		Contact: models.Contact{
			Name:        cfg.OperatorName,
			Phone:       cfg.OperatorPhone,
			Business:    cfg.OperatorBusiness,
			Hours:       cfg.OperatorHours,
			ServiceArea: cfg.OperatorServiceArea,
		},
		Validator:      validator.New(),
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadSizeMB << 20,
	}

	if cfg.RedisAddr != "" {
		sessions := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		defer sessions.Close()
		if err := sessions.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		h.Sessions = sessions
		logger.Info().Str("addr", cfg.RedisAddr).Msg("redis session cache")
	} else {
		sessions := session.NewMemoryStore(cfg.SessionTTL)
		go sessions.Run(ctx, sweepInterval)
		h.Sessions = sessions
		logger.Info().Msg("in-memory session cache")
	}

	if cfg.DatabaseURL != "" {
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare schema")
		}
		h.Store = store
	}

	if cfg.ArchivalEnabled() {
		objects, err := storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect object storage")
		}
		h.Archive = objects
		logger.Info().Str("bucket", cfg.MinioBucket).Msg("export archival enabled")
	}

	router := httpapi.Router(cfg, h, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
