package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v3/pkg/amqp"
	"go.uber.org/fx"

	"github.com/chatwire/realtime-service/config"
	"github.com/chatwire/realtime-service/internal/service"
)

// newPublisher builds a durable topic-exchange AMQP publisher. The topic a
// message is published to becomes its routing key on the shared exchange.
func newPublisher(cfg *config.Config, logger watermill.LoggerAdapter) (*amqp.Publisher, error) {
	amqpConfig := amqp.NewDurablePubSubConfig(cfg.Bus.URL, nil)
	amqpConfig.Exchange.GenerateName = func(string) string { return cfg.Bus.Exchange }
	amqpConfig.Exchange.Type = "topic"
	amqpConfig.Publish.GenerateRoutingKey = func(topic string) string { return topic }

	return amqp.NewPublisher(amqpConfig, logger)
}

var Module = fx.Module("pubsub",
	fx.Provide(
		func(lc fx.Lifecycle, cfg *config.Config, logger watermill.LoggerAdapter) (service.EventDispatcher, error) {
			if !cfg.Bus.Enabled {
				return NewNoopDispatcher(), nil
			}

			publisher, err := newPublisher(cfg, logger)
			if err != nil {
				return nil, err
			}
			d := NewDispatcher(publisher)
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error { return d.Close() },
			})
			return d, nil
		},
	),
)
