package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/api"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/cache"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/config"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/database"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/logging"
	"github.com/Creastein/idx-trading-assistant-sub000/internal/screener"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Optional .env for local development; real deployments set the
	// environment directly.
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Pretty)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scoreCache := cache.New(cfg.Redis, logger)
	defer scoreCache.Close()

	var repo *database.Repository
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("database connect failed")
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
		repo = database.NewRepository(db)
	} else {
		logger.Info().Msg("no database configured, persistence disabled")
	}

	source := screener.NewFileSource(cfg.Screener.DataDir)
	scr := screener.New(source, cfg.Screener, scoreCache, logger)
	if err := scr.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("screener start failed")
	}
	defer scr.Stop()

	server := api.New(cfg, scoreCache, repo, scr, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info().Msg("shutdown signal received")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	logger.Info().Msg("stopped")
}
