package screener

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

// Source supplies historical candle series. The engine performs no market
// data fetching of its own; callers decide where series come from.
type Source interface {
	Symbols() ([]string, error)
	Candles(symbol, timeframe string) ([]candle.Candle, error)
}

// FileSource reads per-symbol OHLCV CSV files from a directory tree shaped
// as <root>/<timeframe>/<SYMBOL>.csv; daily files may also sit directly in
// the root as <SYMBOL>.csv.
type FileSource struct {
	root string
}

// NewFileSource creates a source over a data directory.
func NewFileSource(root string) *FileSource {
	return &FileSource{root: root}
}

// Symbols lists every symbol with a daily series, sorted.
func (f *FileSource) Symbols() ([]string, error) {
	seen := map[string]bool{}
	for _, dir := range []string{filepath.Join(f.root, "1d"), f.root} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".csv") {
				continue
			}
			seen[strings.TrimSuffix(name, ".csv")] = true
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no candle files under %s", f.root)
	}

	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Candles loads one symbol's series for a timeframe. A missing file is an
// error; the screener treats it as "no data" for that granularity.
func (f *FileSource) Candles(symbol, timeframe string) ([]candle.Candle, error) {
	paths := []string{filepath.Join(f.root, timeframe, symbol+".csv")}
	if timeframe == "1d" {
		paths = append(paths, filepath.Join(f.root, symbol+".csv"))
	}

	var lastErr error
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			lastErr = err
			continue
		}
		defer file.Close()
		series, err := candle.ParseCSV(file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return series, nil
	}
	return nil, fmt.Errorf("no %s series for %s: %w", timeframe, symbol, lastErr)
}
