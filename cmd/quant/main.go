// Command quant runs the analysis engine against local CSV candle files,
// for spot-checking symbols without the HTTP server.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
)

func main() {
	root := &cobra.Command{
		Use:   "quant",
		Short: "Technical analysis over local OHLCV CSV files",
		Long: `Run the composite scorer, the multi-timeframe confluence analyzer
or a strategy backtest against candle series stored as CSV
(timestamp,open,high,low,close,volume; header row optional).`,
		SilenceUsage: true,
	}

	root.AddCommand(scoreCmd(), confluenceCmd(), backtestCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadCandles(path string) ([]candle.Candle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	series, err := candle.ParseCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return series, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
