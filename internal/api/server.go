// Package api serializes the analysis engine over HTTP. The engine itself
// owns no wire formats; this layer maps candle payloads in and verdict
// structures out.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/cache"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/config"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/database"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/screener"
)

// ResultCache is the slice of the analysis cache the handlers consult
// before recomputing and write through after. *cache.Cache implements it.
type ResultCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, value interface{})
}

// Server is the HTTP API server.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	logger     zerolog.Logger

	cache    ResultCache
	repo     *database.Repository
	screener *screener.Screener
}

// New wires the server. repo and resultCache may be nil; the affected
// endpoints degrade or report unavailability.
func New(cfg *config.Config, resultCache ResultCache, repo *database.Repository, scr *screener.Screener, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	router.Use(cors.New(corsConfig))

	if resultCache == nil {
		// A nil *cache.Cache is valid and always misses, which keeps the
		// handlers branch-free.
		resultCache = (*cache.Cache)(nil)
	}

	s := &Server{
		router:   router,
		cfg:      cfg,
		logger:   logger.With().Str("component", "api").Logger(),
		cache:    resultCache,
		repo:     repo,
		screener: scr,
	}
	router.Use(s.requestLogger())
	s.setupRoutes()
	return s
}

// requestLogger tags every request with an ID and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.handleHealth)
		v1.POST("/indicators/:kind", s.handleIndicator)
		v1.POST("/score", s.handleScore)
		v1.POST("/confluence", s.handleConfluence)
		v1.POST("/backtest", s.handleBacktest)
		v1.GET("/backtest/strategies", s.handleStrategies)
		v1.GET("/backtests", s.handleListBacktests)
		v1.GET("/screener/results", s.handleScreenerResults)
		v1.POST("/screener/scan", s.handleScreenerScan)
	}
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
