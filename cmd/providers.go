package cmd

import (
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/chatwire/realtime-service/config"
)

// ProvideLogger builds the process-wide slog logger. The level lives in a
// LevelVar so config reloads can adjust it without restarting.
func ProvideLogger(cfg *config.Config) (*slog.Logger, *slog.LevelVar) {
	lvl := new(slog.LevelVar)
	lvl.Set(cfg.Level())

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	})).With("service", ServiceName)

	slog.SetDefault(logger)
	return logger, lvl
}

// ProvideWatermillLogger bridges watermill's logging onto slog.
func ProvideWatermillLogger(logger *slog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logger)
}

// WatchLogLevel wires config hot reload of the log level.
func WatchLogLevel(cfg *config.Config, logger *slog.Logger, lvl *slog.LevelVar) {
	cfg.WatchLogLevel(logger, lvl)
}
