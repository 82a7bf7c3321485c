package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/cache"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/config"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/logging"
)

func testServer() *Server {
	cfg := &config.Config{}
	cfg.Backtest.InitialCapital = 100_000_000
	cfg.Backtest.StopLossPercent = 0.02
	return New(cfg, nil, nil, nil, logging.Nop())
}

// memCache keeps cached entries in a map so tests can observe and seed the
// read path without a Redis server.
type memCache struct {
	store map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{store: map[string][]byte{}}
}

func (m *memCache) GetJSON(ctx context.Context, key string, dst interface{}) error {
	data, ok := m.store[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, dst)
}

func (m *memCache) SetJSON(ctx context.Context, key string, value interface{}) {
	if data, err := json.Marshal(value); err == nil {
		m.store[key] = data
	}
}

func candlesJSON(start, step float64, n int) string {
	var b strings.Builder
	b.WriteString("[")
	price := start
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		price += step
		fmt.Fprintf(&b, `{"timestamp":%d,"open":%f,"high":%f,"low":%f,"close":%f,"volume":100000}`,
			i*86400, price, price+1, price-1, price)
	}
	b.WriteString("]")
	return b.String()
}

func doJSON(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var decoded map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("parse response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer()
	for _, path := range []string{"/health", "/api/v1/health"} {
		w, body := doJSON(t, s, http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, w.Code)
		}
		if body["status"] != "healthy" {
			t.Fatalf("%s body = %v", path, body)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s missing request id header", path)
		}
	}
}

func TestIndicatorEndpoint(t *testing.T) {
	s := testServer()
	payload := fmt.Sprintf(`{"candles":%s,"params":{"period":14}}`, candlesJSON(100, 1, 40))
	w, body := doJSON(t, s, http.MethodPost, "/api/v1/indicators/rsi", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", w.Code, body)
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("data = %v", body["data"])
	}
	// Strictly increasing closes pin RSI at 100.
	if got := data["current"].(float64); got != 100 {
		t.Fatalf("rsi = %f", got)
	}
}

func TestIndicatorEndpoint_InsufficientDataIsNull(t *testing.T) {
	s := testServer()
	payload := fmt.Sprintf(`{"candles":%s}`, candlesJSON(100, 1, 5))
	w, body := doJSON(t, s, http.MethodPost, "/api/v1/indicators/macd", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["data"] != nil {
		t.Fatalf("data = %v, want null", body["data"])
	}
}

func TestIndicatorEndpoint_UnknownKind(t *testing.T) {
	s := testServer()
	payload := fmt.Sprintf(`{"candles":%s}`, candlesJSON(100, 1, 40))
	w, _ := doJSON(t, s, http.MethodPost, "/api/v1/indicators/vwap", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestScoreEndpoint(t *testing.T) {
	s := testServer()
	payload := fmt.Sprintf(`{"symbol":"BBCA","primary":%s}`, candlesJSON(100, 1, 120))
	w, body := doJSON(t, s, http.MethodPost, "/api/v1/score", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", w.Code, body)
	}
	data := body["data"].(map[string]interface{})
	if data["symbol"] != "BBCA" {
		t.Fatalf("symbol = %v", data["symbol"])
	}
	normalized := data["normalized"].(float64)
	if normalized < 0 || normalized > 100 {
		t.Fatalf("normalized = %f", normalized)
	}
}

func TestScoreEndpoint_ServesCachedResult(t *testing.T) {
	cfg := &config.Config{}
	mc := newMemCache()
	s := New(cfg, mc, nil, nil, logging.Nop())

	payload := fmt.Sprintf(`{"symbol":"BBCA","primary":%s}`, candlesJSON(100, 1, 120))
	if w, _ := doJSON(t, s, http.MethodPost, "/api/v1/score", payload); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if _, ok := mc.store[cache.ScoreKey("BBCA")]; !ok {
		t.Fatal("first request did not populate the cache")
	}

	// Seed a recognizable entry; the second request must serve it instead
	// of recomputing.
	mc.store[cache.ScoreKey("BBCA")] = []byte(`{"symbol":"BBCA","normalized":42,"verdict":"HOLD"}`)
	w, body := doJSON(t, s, http.MethodPost, "/api/v1/score", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := body["data"].(map[string]interface{})
	if data["normalized"].(float64) != 42 {
		t.Fatalf("normalized = %v, want the cached 42", data["normalized"])
	}
}

func TestBacktestEndpoint_ServesCachedResult(t *testing.T) {
	cfg := &config.Config{}
	cfg.Backtest.InitialCapital = 100_000_000
	cfg.Backtest.StopLossPercent = 0.02
	mc := newMemCache()
	s := New(cfg, mc, nil, nil, logging.Nop())

	payload := fmt.Sprintf(`{"symbol":"BBCA","strategy":"rsi_reversal","candles":%s}`, candlesJSON(100, 1, 120))
	if w, _ := doJSON(t, s, http.MethodPost, "/api/v1/backtest", payload); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	key := cache.BacktestKey("BBCA", "rsi_reversal")
	if _, ok := mc.store[key]; !ok {
		t.Fatal("first request did not populate the cache")
	}

	mc.store[key] = []byte(`{"symbol":"BBCA","strategy":"rsi_reversal","totalTrades":99}`)
	w, body := doJSON(t, s, http.MethodPost, "/api/v1/backtest", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := body["data"].(map[string]interface{})
	if data["totalTrades"].(float64) != 99 {
		t.Fatalf("totalTrades = %v, want the cached 99", data["totalTrades"])
	}
}

func TestScoreEndpoint_MissingBody(t *testing.T) {
	s := testServer()
	w, _ := doJSON(t, s, http.MethodPost, "/api/v1/score", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestConfluenceEndpoint(t *testing.T) {
	s := testServer()
	series := candlesJSON(100, 1, 200)
	payload := fmt.Sprintf(`{"symbol":"BBCA","mode":"position","series":{"1h":%s,"1d":%s,"1w":%s}}`,
		series, series, series)
	w, body := doJSON(t, s, http.MethodPost, "/api/v1/confluence", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", w.Code, body)
	}
	data := body["data"].(map[string]interface{})
	conf := data["confluence"].(map[string]interface{})
	if conf["direction"] != "BULLISH" {
		t.Fatalf("direction = %v", conf["direction"])
	}
}

func TestConfluenceEndpoint_BadMode(t *testing.T) {
	s := testServer()
	payload := fmt.Sprintf(`{"symbol":"BBCA","mode":"swing","series":{"1d":%s}}`, candlesJSON(100, 1, 60))
	w, _ := doJSON(t, s, http.MethodPost, "/api/v1/confluence", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestBacktestEndpoint(t *testing.T) {
	s := testServer()
	payload := fmt.Sprintf(`{"symbol":"BBCA","strategy":"rsi_reversal","candles":%s}`, candlesJSON(100, 1, 120))
	w, body := doJSON(t, s, http.MethodPost, "/api/v1/backtest", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %v", w.Code, body)
	}
	data := body["data"].(map[string]interface{})
	if data["strategy"] != "rsi_reversal" {
		t.Fatalf("strategy = %v", data["strategy"])
	}
	if data["initialCapital"].(float64) != 100_000_000 {
		t.Fatalf("initial capital = %v, want server default", data["initialCapital"])
	}
}

func TestBacktestEndpoint_UnknownStrategy(t *testing.T) {
	s := testServer()
	payload := fmt.Sprintf(`{"symbol":"BBCA","strategy":"martingale","candles":%s}`, candlesJSON(100, 1, 120))
	w, _ := doJSON(t, s, http.MethodPost, "/api/v1/backtest", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestStrategiesEndpoint(t *testing.T) {
	s := testServer()
	w, body := doJSON(t, s, http.MethodGet, "/api/v1/backtest/strategies", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := body["data"].([]interface{})
	if len(data) != 4 {
		t.Fatalf("strategies = %v", data)
	}
}

func TestListBacktests_NoPersistence(t *testing.T) {
	s := testServer()
	w, _ := doJSON(t, s, http.MethodGet, "/api/v1/backtests", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestScreenerEndpoints_NotConfigured(t *testing.T) {
	s := testServer()
	w, _ := doJSON(t, s, http.MethodGet, "/api/v1/screener/results", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("results status = %d", w.Code)
	}
	w, _ = doJSON(t, s, http.MethodPost, "/api/v1/screener/scan", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("scan status = %d", w.Code)
	}
}
