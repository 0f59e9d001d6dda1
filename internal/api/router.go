package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jmulder/crypto-portfolio-backend/internal/api/handlers"
	custommiddleware "github.com/jmulder/crypto-portfolio-backend/internal/api/middleware"
	"github.com/jmulder/crypto-portfolio-backend/internal/cache"
	"github.com/jmulder/crypto-portfolio-backend/internal/config"
	"github.com/jmulder/crypto-portfolio-backend/internal/fetcher"
	"github.com/jmulder/crypto-portfolio-backend/internal/service"
)

// RouterDeps bundles the components the HTTP surface is built on.
type RouterDeps struct {
	System  *service.SystemService
	Session *service.PortfolioSession
	Risk    *service.RiskService
	Quotes  *cache.QuoteCache
	Fetcher *fetcher.Fetcher
	Logger  zerolog.Logger
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps RouterDeps, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(deps.Logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(deps.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/holdings", func(r chi.Router) {
			holdingsHandler := handlers.NewHoldingsHandler(deps.Session)
			r.Get("/", holdingsHandler.List)
			r.Post("/", holdingsHandler.Create)
			r.Delete("/", holdingsHandler.Clear)
			r.Put("/{lotID}", holdingsHandler.Update)
			r.Delete("/{lotID}", holdingsHandler.Delete)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(deps.Session)
			r.Get("/summary", portfolioHandler.Summary)
			r.Get("/allocation", portfolioHandler.Allocation)
			r.Get("/performance", portfolioHandler.Performance)
			r.Get("/stoploss", portfolioHandler.StopLoss)
		})

		r.Route("/quotes", func(r chi.Router) {
			quotesHandler := handlers.NewQuotesHandler(deps.Quotes, deps.Fetcher)
			r.Get("/", quotesHandler.List)
			r.Post("/refresh", quotesHandler.Refresh)
			r.Get("/{identifier}", quotesHandler.Get)
		})

		r.Route("/assets", func(r chi.Router) {
			assetsHandler := handlers.NewAssetsHandler(deps.Risk)
			r.Get("/{identifier}/risk", assetsHandler.Risk)
		})

		r.Route("/config", func(r chi.Router) {
			settingsHandler := handlers.NewSettingsHandler(deps.Session)
			r.Get("/", settingsHandler.Get)
			r.Put("/theme", settingsHandler.UpdateTheme)
			r.Put("/maxloss", settingsHandler.UpdateMaxLoss)
			r.Put("/takeprofit", settingsHandler.UpdateTakeProfit)
		})
	})

	return r
}
