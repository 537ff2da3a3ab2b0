package service

import (
	"log/slog"
	"time"

	"github.com/chatwire/realtime-service/internal/domain/event"
	"github.com/chatwire/realtime-service/internal/domain/registry"
)

const defaultSendTimeout = 500 * time.Millisecond

// Broadcaster fans one outbound event out to every live session of every
// recipient. The payload is serialized exactly once, so all targets receive
// byte-identical frames. No ordering is guaranteed across recipients or
// across one recipient's devices.
type Broadcaster struct {
	reg         registry.Registrar
	logger      *slog.Logger
	sendTimeout time.Duration
}

func NewBroadcaster(reg registry.Registrar, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		reg:         reg,
		logger:      logger,
		sendTimeout: defaultSendTimeout,
	}
}

// Broadcast delivers ev to all live sessions of every user in userIDs.
// Sessions that are closed or saturated are skipped silently; mid-teardown
// sessions are reaped by their own close handler, not here.
func (b *Broadcaster) Broadcast(userIDs []string, ev event.Outbound) {
	data, err := event.Encode(ev)
	if err != nil {
		b.logger.Error("encode outbound event", "kind", ev.Kind(), "error", err)
		return
	}

	for _, uid := range userIDs {
		for _, sess := range b.reg.SessionsFor(uid) {
			if !sess.Send(data, b.sendTimeout) {
				b.logger.Debug("session skipped during fanout",
					"user_id", uid, "session_id", sess.ID(), "kind", ev.Kind())
			}
		}
	}
}

// Send delivers ev to a single session, used for session-scoped replies
// (auth results, pong, inline errors) that must never be broadcast.
func (b *Broadcaster) Send(sess *registry.Session, ev event.Outbound) {
	data, err := event.Encode(ev)
	if err != nil {
		b.logger.Error("encode outbound event", "kind", ev.Kind(), "error", err)
		return
	}
	if !sess.Send(data, b.sendTimeout) {
		b.logger.Debug("session reply dropped", "session_id", sess.ID(), "kind", ev.Kind())
	}
}
