package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/backtest"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/cache"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/indicator"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/scoring"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/timeframe"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

type indicatorRequest struct {
	Candles []candle.Candle  `json:"candles" binding:"required"`
	Params  indicator.Params `json:"params"`
}

// handleIndicator computes one indicator over a posted series. Insufficient
// data is a valid outcome, returned as a null result rather than an error.
func (s *Server) handleIndicator(c *gin.Context) {
	var req indicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := indicator.Compute(indicator.Kind(c.Param("kind")), req.Candles, req.Params)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	successResponse(c, result)
}

type scoreRequest struct {
	Symbol  string          `json:"symbol" binding:"required"`
	Primary []candle.Candle `json:"primary" binding:"required"`
	Higher  []candle.Candle `json:"higher"`
}

func (s *Server) handleScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	key := cache.ScoreKey(req.Symbol)
	var cached scoring.CompositeScore
	if err := s.cache.GetJSON(c.Request.Context(), key, &cached); err == nil {
		successResponse(c, &cached)
		return
	}

	score := scoring.ScoreSymbol(scoring.Bundle{
		Symbol:  req.Symbol,
		Primary: req.Primary,
		Higher:  req.Higher,
	})
	s.cache.SetJSON(c.Request.Context(), key, score)

	if s.repo != nil {
		if _, err := s.repo.SaveScreenSnapshot(c.Request.Context(), score); err != nil {
			s.logger.Warn().Err(err).Str("symbol", req.Symbol).Msg("snapshot persist failed")
		}
	}
	successResponse(c, score)
}

type confluenceRequest struct {
	Symbol string                     `json:"symbol" binding:"required"`
	Mode   string                     `json:"mode" binding:"required"`
	Series map[string][]candle.Candle `json:"series" binding:"required"`
}

func (s *Server) handleConfluence(c *gin.Context) {
	var req confluenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	key := cache.ConfluenceKey(req.Symbol, req.Mode)
	var cached timeframe.Report
	if err := s.cache.GetJSON(c.Request.Context(), key, &cached); err == nil {
		successResponse(c, &cached)
		return
	}

	report, err := timeframe.Analyze(req.Symbol, req.Series, timeframe.Mode(req.Mode))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	s.cache.SetJSON(c.Request.Context(), key, report)
	successResponse(c, report)
}

type backtestRequest struct {
	Symbol          string          `json:"symbol" binding:"required"`
	Strategy        string          `json:"strategy" binding:"required"`
	Candles         []candle.Candle `json:"candles" binding:"required"`
	InitialCapital  float64         `json:"initialCapital"`
	StopLossPercent float64         `json:"stopLossPercent"`
}

func (s *Server) handleBacktest(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	key := cache.BacktestKey(req.Symbol, req.Strategy)
	var cached backtest.Result
	if err := s.cache.GetJSON(c.Request.Context(), key, &cached); err == nil {
		successResponse(c, &cached)
		return
	}

	params := backtest.Params{
		InitialCapital:  req.InitialCapital,
		StopLossPercent: req.StopLossPercent,
	}
	if params.InitialCapital <= 0 {
		params.InitialCapital = s.cfg.Backtest.InitialCapital
	}
	if params.StopLossPercent <= 0 {
		params.StopLossPercent = s.cfg.Backtest.StopLossPercent
	}

	result, err := backtest.Run(req.Symbol, req.Candles, req.Strategy, params)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	s.cache.SetJSON(c.Request.Context(), key, result)

	if s.repo != nil {
		if _, err := s.repo.SaveBacktest(c.Request.Context(), result); err != nil {
			s.logger.Warn().Err(err).Str("symbol", req.Symbol).Msg("backtest persist failed")
		}
	}
	successResponse(c, result)
}

func (s *Server) handleStrategies(c *gin.Context) {
	successResponse(c, backtest.Strategies())
}

func (s *Server) handleListBacktests(c *gin.Context) {
	if s.repo == nil {
		errorResponse(c, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := s.repo.ListBacktests(c.Request.Context(), c.Query("symbol"), limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	successResponse(c, runs)
}

func (s *Server) handleScreenerResults(c *gin.Context) {
	if s.screener == nil {
		errorResponse(c, http.StatusServiceUnavailable, "screener not configured")
		return
	}
	results, scannedAt, stale := s.screener.Results()
	successResponse(c, gin.H{
		"results":   results,
		"scannedAt": scannedAt,
		"stale":     stale,
	})
}

func (s *Server) handleScreenerScan(c *gin.Context) {
	if s.screener == nil {
		errorResponse(c, http.StatusServiceUnavailable, "screener not configured")
		return
	}
	if err := s.screener.Scan(c.Request.Context()); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			errorResponse(c, http.StatusRequestTimeout, err.Error())
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	results, scannedAt, _ := s.screener.Results()
	successResponse(c, gin.H{
		"results":   results,
		"scannedAt": scannedAt,
	})
}
