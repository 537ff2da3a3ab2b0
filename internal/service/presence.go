package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/chatwire/realtime-service/internal/domain/event"
	"github.com/chatwire/realtime-service/internal/domain/model"
)

// Bus topics for re-published presence transitions.
const TopicUserStatus = "chat.user.status.v1"

// Presence derives online/offline transitions from session lifecycle and
// notifies the affected user's audience.
//
// The two directions are deliberately asymmetric: online fires on every
// successful authentication, once per device, while offline fires only when
// the user's last session closes. Deduplicating online events would change
// observable behavior for multi-device users.
type Presence struct {
	convs  ConversationStore
	users  UserStore
	cast   *Broadcaster
	bus    EventDispatcher
	logger *slog.Logger
}

func NewPresence(convs ConversationStore, users UserStore, cast *Broadcaster, bus EventDispatcher, logger *slog.Logger) *Presence {
	return &Presence{
		convs:  convs,
		users:  users,
		cast:   cast,
		bus:    bus,
		logger: logger,
	}
}

// Audience computes who should learn about a presence change of userID: the
// union of all other members across every conversation the user belongs to,
// deduplicated, excluding the user. Always a live query — membership may
// have changed since the last event, so nothing is cached.
func (p *Presence) Audience(ctx context.Context, userID string) ([]string, error) {
	convs, err := p.convs.UserConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("presence: list conversations for %s: %w", userID, err)
	}

	seen := make(map[string]struct{})
	var audience []string
	for _, conv := range convs {
		for _, member := range conv.Members {
			if member.ID == userID {
				continue
			}
			if _, ok := seen[member.ID]; ok {
				continue
			}
			seen[member.ID] = struct{}{}
			audience = append(audience, member.ID)
		}
	}
	return audience, nil
}

// HandleOnline announces an online transition after a successful
// authentication. Audience notification and status-cache reconciliation are
// independent, so they run concurrently; either failing is logged and scoped
// to this one transition.
func (p *Presence) HandleOnline(ctx context.Context, userID string) {
	p.transition(ctx, userID, model.StatusOnline)
}

// HandleOffline announces an offline transition. Callers invoke it only on
// the registry's empty edge, when the user's last session has closed.
func (p *Presence) HandleOffline(ctx context.Context, userID string) {
	p.transition(ctx, userID, model.StatusOffline)
}

func (p *Presence) transition(ctx context.Context, userID, status string) {
	// Plain group, no shared cancellation: a failed status-cache write must
	// not abort the audience broadcast, or vice versa.
	var g errgroup.Group

	g.Go(func() error {
		audience, err := p.Audience(ctx, userID)
		if err != nil {
			return err
		}
		p.cast.Broadcast(audience, event.NewUserStatus(userID, status))
		return nil
	})

	g.Go(func() error {
		// Display cache only; the registry stays authoritative.
		if err := p.users.SetStatus(ctx, userID, status); err != nil {
			return fmt.Errorf("presence: reconcile status cache for %s: %w", userID, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		p.logger.Warn("presence transition incomplete",
			"user_id", userID, "status", status, "error", err)
	}

	if err := p.bus.Dispatch(ctx, TopicUserStatus, event.NewUserStatus(userID, status)); err != nil {
		p.logger.Warn("publish presence event", "user_id", userID, "status", status, "error", err)
	}
}
