package main

import (
	"fmt"

	"form1325/internal/boi"
	"form1325/internal/config"
	"form1325/internal/database"
	"form1325/internal/logger"
	"form1325/internal/rates"
	"go.uber.org/zap"
)

// app holds what every subcommand needs.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	provider *rates.Provider
}

func newApp() (*app, error) {
	// Load application configuration
	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.File)
	if err != nil {
		return nil, fmt.Errorf("could not create logger: %w", err)
	}
	log.Debug("Configuration loaded", zap.String("source", cfg.Rates.Source), zap.String("currency", cfg.Rates.Currency))

	// Initialize the rate cache database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	provider := rates.NewProvider(newSource(&cfg.Rates, log), database.NewRateStore(db), log)
	return &app{cfg: cfg, log: log, provider: provider}, nil
}

func newSource(cfg *config.Rates, log *zap.Logger) rates.Source {
	if cfg.Source == config.SourceFile {
		return rates.NewFileSource(cfg.File)
	}
	return boi.NewRestClient(cfg, log)
}
