package chatstore

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/chatwire/realtime-service/config"
	"github.com/chatwire/realtime-service/internal/service"
)

var Module = fx.Module("chatstore",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.Config, logger *slog.Logger) *Client {
				return New(cfg.ChatAPI.BaseURL, cfg.ChatAPI.Timeout, logger)
			},
			fx.As(new(service.UserStore)),
			fx.As(new(service.ConversationStore)),
			fx.As(new(service.MessageStore)),
		),
	),
)
