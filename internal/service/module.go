package service

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/chatwire/realtime-service/internal/domain/registry"
)

var Module = fx.Module("service",
	fx.Provide(
		NewBroadcaster,
		NewProfileResolver,
		NewPresence,
		func(
			verifier TokenVerifier,
			profiles *ProfileResolver,
			messages MessageStore,
			convs ConversationStore,
			reg registry.Registrar,
			presence *Presence,
			cast *Broadcaster,
			bus EventDispatcher,
			logger *slog.Logger,
		) *Router {
			return NewRouter(RouterParams{
				Verifier: verifier,
				Profiles: profiles,
				Messages: messages,
				Convs:    convs,
				Registry: reg,
				Presence: presence,
				Cast:     cast,
				Bus:      bus,
				Logger:   logger,
			})
		},
	),
)
