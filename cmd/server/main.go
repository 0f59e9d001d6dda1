package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmulder/crypto-portfolio-backend/internal/api"
	"github.com/jmulder/crypto-portfolio-backend/internal/cache"
	"github.com/jmulder/crypto-portfolio-backend/internal/config"
	"github.com/jmulder/crypto-portfolio-backend/internal/database"
	"github.com/jmulder/crypto-portfolio-backend/internal/fetcher"
	"github.com/jmulder/crypto-portfolio-backend/internal/marketdata"
	"github.com/jmulder/crypto-portfolio-backend/internal/repository"
	"github.com/jmulder/crypto-portfolio-backend/internal/secrets"
	"github.com/jmulder/crypto-portfolio-backend/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Open database connection and bring the schema up to date
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	logger.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	store := repository.NewKVRepository(db, logger)

	sealer, err := secrets.NewSealer(cfg.FernetKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid fernet key")
	}

	// Services and caches
	systemService := service.NewSystemService(db)
	holdingsService := service.NewHoldingsService(store, logger)
	configService := service.NewConfigService(store, sealer, logger)

	// An API key from the environment is sealed into the store; otherwise
	// fall back to a previously stored one.
	apiKey := cfg.Market.APIKey
	if apiKey != "" {
		if err := configService.StoreAPIKey(apiKey); err != nil {
			logger.Warn().Err(err).Msg("failed to persist market api key")
		}
	} else {
		apiKey = configService.LoadAPIKey()
	}

	quotes := cache.NewQuoteCache()
	detailed := cache.NewDetailedCache(store, logger)
	detailed.WarmStart()

	client := marketdata.NewFeedClient(cfg.Market.BaseURL, apiKey, logger)

	quoteFetcher := fetcher.New(client, quotes, store, cfg.Market.RefreshInterval, cfg.Market.CoinLimit, logger)
	quoteFetcher.WarmStart()

	session := service.NewPortfolioSession(holdingsService, configService, quotes, logger)
	riskService := service.NewRiskService(client, detailed, quotes, logger)

	quoteFetcher.OnRefreshed(session.QuotesRefreshed)
	if err := quoteFetcher.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start quote fetcher")
	}

	// Create router
	router := api.NewRouter(api.RouterDeps{
		System:  systemService,
		Session: session,
		Risk:    riskService,
		Quotes:  quotes,
		Fetcher: quoteFetcher,
		Logger:  logger,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	quoteFetcher.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
