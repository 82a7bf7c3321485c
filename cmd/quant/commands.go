package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/backtest"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/candle"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/scoring"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/timeframe"
)

func scoreCmd() *cobra.Command {
	var higherPath string

	cmd := &cobra.Command{
		Use:   "score <symbol> <daily.csv>",
		Short: "Compute the composite technical score for one symbol",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			primary, err := loadCandles(args[1])
			if err != nil {
				return err
			}
			var higher []candle.Candle
			if higherPath != "" {
				if higher, err = loadCandles(higherPath); err != nil {
					return err
				}
			}
			return printJSON(scoring.ScoreSymbol(scoring.Bundle{
				Symbol:  args[0],
				Primary: primary,
				Higher:  higher,
			}))
		},
	}
	cmd.Flags().StringVar(&higherPath, "higher", "", "weekly CSV for the timeframe-alignment factor")
	return cmd
}

func confluenceCmd() *cobra.Command {
	var mode string
	var seriesFlags []string

	cmd := &cobra.Command{
		Use:   "confluence <symbol>",
		Short: "Analyze trend confluence across timeframes",
		Long: `Analyze one symbol across the timeframe ladder of the chosen mode.
Provide each granularity as --series tf=path, e.g.:

  quant confluence BBCA --mode position \
    --series 1h=BBCA_1h.csv --series 1d=BBCA_1d.csv --series 1w=BBCA_1w.csv

A missing 4h series is synthesized from the hourly one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seriesByTF := map[string][]candle.Candle{}
			for _, flag := range seriesFlags {
				tf, path, ok := strings.Cut(flag, "=")
				if !ok {
					return fmt.Errorf("bad --series value %q, want tf=path", flag)
				}
				series, err := loadCandles(path)
				if err != nil {
					return err
				}
				seriesByTF[tf] = series
			}

			report, err := timeframe.Analyze(args[0], seriesByTF, timeframe.Mode(mode))
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(timeframe.ModePosition), "trading mode: scalping or position")
	cmd.Flags().StringArrayVar(&seriesFlags, "series", nil, "timeframe=csv-path, repeatable")
	return cmd
}

func backtestCmd() *cobra.Command {
	var (
		strategy string
		capital  float64
		stopLoss float64
	)

	cmd := &cobra.Command{
		Use:   "backtest <symbol> <daily.csv>",
		Short: "Replay a strategy over a historical series",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := loadCandles(args[1])
			if err != nil {
				return err
			}
			result, err := backtest.Run(args[0], series, strategy, backtest.Params{
				InitialCapital:  capital,
				StopLossPercent: stopLoss,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "confluence",
		"one of: "+strings.Join(backtest.Strategies(), ", "))
	cmd.Flags().Float64Var(&capital, "capital", backtest.DefaultInitialCapital, "starting cash")
	cmd.Flags().Float64Var(&stopLoss, "stop", backtest.DefaultStopLossPercent, "stop-loss fraction")
	return cmd
}
