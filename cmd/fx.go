package cmd

import (
	"go.uber.org/fx"

	"github.com/chatwire/realtime-service/config"
	httpserver "github.com/chatwire/realtime-service/infra/server/http"
	"github.com/chatwire/realtime-service/internal/adapter/authjwt"
	"github.com/chatwire/realtime-service/internal/adapter/chatstore"
	"github.com/chatwire/realtime-service/internal/adapter/pubsub"
	"github.com/chatwire/realtime-service/internal/domain/registry"
	wshandler "github.com/chatwire/realtime-service/internal/handler/ws"
	"github.com/chatwire/realtime-service/internal/service"
)

func NewApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvideWatermillLogger,
		),
		fx.Invoke(WatchLogLevel),
		registry.Module,
		service.Module,
		authjwt.Module,
		chatstore.Module,
		pubsub.Module,
		wshandler.Module,
		httpserver.Module,
	)
}
