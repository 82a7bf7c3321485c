// Package screener scores every symbol in a candle source and keeps a
// ranked, time-limited snapshot of the results. Scans run on a cron
// schedule and on demand.
package screener

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/cache"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/config"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/scoring"
)

// Result is one symbol's ranked entry in a screen.
type Result struct {
	Rank  int                     `json:"rank"`
	Score *scoring.CompositeScore `json:"score"`
}

// Screener runs composite scoring across all symbols a source offers.
type Screener struct {
	source Source
	cfg    config.ScreenerConfig
	cache  *cache.Cache
	logger zerolog.Logger
	cron   *cron.Cron

	mu        sync.RWMutex
	results   []Result
	scannedAt time.Time
}

// New creates a screener. scoreCache may be nil.
func New(source Source, cfg config.ScreenerConfig, scoreCache *cache.Cache, logger zerolog.Logger) *Screener {
	return &Screener{
		source: source,
		cfg:    cfg,
		cache:  scoreCache,
		logger: logger.With().Str("component", "screener").Logger(),
	}
}

// Start registers the cron schedule and runs an initial scan in the
// background. No-op when the screener is disabled.
func (s *Screener) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info().Msg("screener disabled")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cfg.Cron, func() {
		if err := s.Scan(ctx); err != nil {
			s.logger.Error().Err(err).Msg("scheduled scan failed")
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", s.cfg.Cron).Msg("screener scheduled")

	go func() {
		if err := s.Scan(ctx); err != nil {
			s.logger.Error().Err(err).Msg("initial scan failed")
		}
	}()
	return nil
}

// Stop halts the schedule. In-flight scans finish.
func (s *Screener) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Scan scores every symbol with a bounded worker pool and replaces the
// ranked snapshot. Symbols whose series cannot be loaded are skipped.
func (s *Screener) Scan(ctx context.Context) error {
	started := time.Now()
	symbols, err := s.source.Symbols()
	if err != nil {
		return err
	}

	jobs := make(chan string)
	var mu sync.Mutex
	scores := make([]*scoring.CompositeScore, 0, len(symbols))

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				score := s.scoreSymbol(ctx, symbol)
				if score == nil {
					continue
				}
				mu.Lock()
				scores = append(scores, score)
				mu.Unlock()
			}
		}()
	}

	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- symbol:
		}
	}
	close(jobs)
	wg.Wait()

	// Worker completion order is nondeterministic; rank by score, then
	// symbol for a stable ordering.
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Normalized != scores[j].Normalized {
			return scores[i].Normalized > scores[j].Normalized
		}
		return scores[i].Symbol < scores[j].Symbol
	})

	results := make([]Result, len(scores))
	for i, score := range scores {
		results[i] = Result{Rank: i + 1, Score: score}
	}

	s.mu.Lock()
	s.results = results
	s.scannedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info().
		Int("symbols", len(symbols)).
		Int("scored", len(results)).
		Dur("took", time.Since(started)).
		Msg("scan complete")
	return nil
}

func (s *Screener) scoreSymbol(ctx context.Context, symbol string) *scoring.CompositeScore {
	primary, err := s.source.Candles(symbol, "1d")
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("no daily series")
		return nil
	}
	// The weekly series is optional and only feeds the alignment factor.
	var higher []candle.Candle
	if weekly, err := s.source.Candles(symbol, "1w"); err == nil {
		higher = weekly
	}

	score := scoring.ScoreSymbol(scoring.Bundle{Symbol: symbol, Primary: primary, Higher: higher})
	s.cache.SetJSON(ctx, cache.ScoreKey(symbol), score)
	return score
}

// Results returns the latest ranked snapshot and its age. Stale reports
// whether it outlived the configured TTL.
func (s *Screener) Results() (results []Result, scannedAt time.Time, stale bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ttl := time.Duration(s.cfg.CacheTTLSeconds) * time.Second
	stale = s.scannedAt.IsZero() || time.Since(s.scannedAt) > ttl
	return s.results, s.scannedAt, stale
}
