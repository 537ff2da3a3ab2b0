package authjwt

import (
	"go.uber.org/fx"

	"github.com/chatwire/realtime-service/config"
	"github.com/chatwire/realtime-service/internal/service"
)

var Module = fx.Module("authjwt",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.Config) *Verifier {
				return New(cfg.Auth.Secret, cfg.Auth.Issuer)
			},
			fx.As(new(service.TokenVerifier)),
		),
	),
)
