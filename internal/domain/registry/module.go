package registry

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("registry",
	fx.Provide(
		fx.Annotate(New, fx.As(new(Registrar))),
	),
	fx.Invoke(func(lc fx.Lifecycle, r Registrar) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				r.CloseAll()
				return nil
			},
		})
	}),
)
