package service

import (
	"context"
	"errors"

	"github.com/chatwire/realtime-service/internal/domain/model"
)

// Collaborator contracts consumed by the core. Concrete implementations live
// under internal/adapter; tests substitute in-package fakes.

// ErrInvalidToken is returned by TokenVerifier implementations for tokens
// that fail validation for any reason (signature, expiry, malformed claims).
var ErrInvalidToken = errors.New("service: invalid token")

// TokenVerifier validates a client credential and resolves the user identity
// it was issued to.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// UserStore reads profile records and maintains the display-status cache.
// SetStatus writes are reconciliation only; they never override the
// registry's occupancy as the presence authority.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	SetStatus(ctx context.Context, userID, status string) error
}

// ConversationStore exposes conversation membership. Both calls are live
// queries: membership may change between presence events, so results are
// never cached across calls.
type ConversationStore interface {
	UserConversations(ctx context.Context, userID string) ([]model.Conversation, error)
	Members(ctx context.Context, conversationID string) ([]string, error)
}

// SendMessageInput mirrors the messaging store's persist call.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
	Type           string
	FileURL        string
	FileName       string
}

// MessageStore persists chat messages through the external messaging
// collaborator and returns the stored record.
type MessageStore interface {
	SendMessage(ctx context.Context, in SendMessageInput) (*model.Message, error)
}

// EventDispatcher re-publishes domain events to the message bus for
// downstream consumers. The bus observes the core: publish failures are
// logged by implementations and never surface to clients.
type EventDispatcher interface {
	Dispatch(ctx context.Context, topic string, payload any) error
}
