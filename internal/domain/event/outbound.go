package event

import (
	"encoding/json"

	"github.com/chatwire/realtime-service/internal/domain/model"
)

// Outbound tags pushed to clients.
const (
	KindAuthSuccess = "auth_success"
	KindAuthError   = "auth_error"
	KindNewMessage  = "new_message"
	KindUserStatus  = "user_status"
	KindPong        = "pong"
	KindError       = "error"
)

// Outbound is an immutable server-to-client event. Implementations are plain
// structs with the type tag baked in by their constructor, so one Encode call
// yields the exact bytes every recipient session receives.
type Outbound interface {
	Kind() string
}

// Encode serializes an outbound event once. Fanout reuses the returned bytes
// for every target session.
func Encode(ev Outbound) ([]byte, error) {
	return json.Marshal(ev)
}

// AuthSuccess confirms authentication to the session that sent the token.
type AuthSuccess struct {
	Type string      `json:"type"`
	User *model.User `json:"user"`
}

func NewAuthSuccess(user *model.User) *AuthSuccess {
	return &AuthSuccess{Type: KindAuthSuccess, User: user}
}

func (e *AuthSuccess) Kind() string { return e.Type }

// AuthError reports a failed authentication attempt to its session.
type AuthError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewAuthError(msg string) *AuthError {
	return &AuthError{Type: KindAuthError, Error: msg}
}

func (e *AuthError) Kind() string { return e.Type }

// NewMessage carries a persisted message to every member of its conversation.
type NewMessage struct {
	Type    string         `json:"type"`
	Message *model.Message `json:"message"`
}

func NewNewMessage(msg *model.Message) *NewMessage {
	return &NewMessage{Type: KindNewMessage, Message: msg}
}

func (e *NewMessage) Kind() string { return e.Type }

// TypingIndicator relays a typing state to conversation members other than
// the sender.
type TypingIndicator struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	UserName       string `json:"userName"`
	IsTyping       bool   `json:"isTyping"`
}

func NewTypingIndicator(conversationID, userID, userName string, isTyping bool) *TypingIndicator {
	return &TypingIndicator{
		Type:           KindTyping,
		ConversationID: conversationID,
		UserID:         userID,
		UserName:       userName,
		IsTyping:       isTyping,
	}
}

func (e *TypingIndicator) Kind() string { return e.Type }

// UserStatus announces an online or offline transition to the presence
// audience of the affected user.
type UserStatus struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Status string `json:"status"`
}

func NewUserStatus(userID, status string) *UserStatus {
	return &UserStatus{Type: KindUserStatus, UserID: userID, Status: status}
}

func (e *UserStatus) Kind() string { return e.Type }

// Pong answers a ping probe.
type Pong struct {
	Type string `json:"type"`
}

func NewPong() *Pong { return &Pong{Type: KindPong} }

func (e *Pong) Kind() string { return e.Type }

// Error is an inline, session-scoped failure notice: precondition violations
// and surfaced collaborator failures. Never broadcast.
type Error struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewError(msg string) *Error {
	return &Error{Type: KindError, Error: msg}
}

func (e *Error) Kind() string { return e.Type }
