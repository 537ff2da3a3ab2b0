package ws

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/chatwire/realtime-service/config"
	"github.com/chatwire/realtime-service/internal/service"
)

var Module = fx.Module("ws-handler",
	fx.Provide(
		func(logger *slog.Logger, router *service.Router, cfg *config.Config) *Handler {
			return NewHandler(logger, router, Options{
				OutboxSize:     cfg.WS.OutboxSize,
				MaxMessageSize: cfg.WS.MaxMessageSize,
				WriteTimeout:   cfg.WS.WriteTimeout,
				PongTimeout:    cfg.WS.PongTimeout,
			})
		},
	),
)
