package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound tags accepted from clients. Anything else is ignored by policy.
const (
	KindAuth    = "auth"
	KindMessage = "message"
	KindTyping  = "typing"
	KindPing    = "ping"
)

var (
	// ErrUnknownKind marks an inbound frame whose type tag is not part of the
	// protocol. Callers drop these silently; the connection stays open.
	ErrUnknownKind = errors.New("event: unknown inbound kind")

	// ErrMalformed marks a frame that failed to parse or is missing required
	// fields. Callers log and swallow it; the connection stays open.
	ErrMalformed = errors.New("event: malformed inbound payload")
)

// Inbound is the closed set of client events. Decoding happens exactly once
// at the transport boundary; the router switches over the concrete types so
// a new kind cannot be added without touching the dispatch.
type Inbound interface {
	inbound()
}

// Auth carries the bearer token of an authentication attempt.
type Auth struct {
	Token string `json:"token"`
}

// Message is a request to persist and fan out a chat message.
type Message struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
	MessageType    string `json:"messageType"`
	FileURL        string `json:"fileUrl"`
	FileName       string `json:"fileName"`
}

// Typing signals a typing-indicator change inside one conversation.
type Typing struct {
	ConversationID string `json:"conversationId"`
	IsTyping       bool   `json:"isTyping"`
}

// Ping is a client liveness probe, answered with pong.
type Ping struct{}

func (*Auth) inbound()    {}
func (*Message) inbound() {}
func (*Typing) inbound()  {}
func (*Ping) inbound()    {}

type envelope struct {
	Type string `json:"type"`
}

// DecodeInbound parses one raw client frame into its tagged variant.
// It returns ErrUnknownKind for unrecognized tags and ErrMalformed for
// frames that do not parse or miss required fields.
func DecodeInbound(raw []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type tag", ErrMalformed)
	}

	switch env.Type {
	case KindAuth:
		ev := new(Auth)
		if err := json.Unmarshal(raw, ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if ev.Token == "" {
			return nil, fmt.Errorf("%w: auth requires token", ErrMalformed)
		}
		return ev, nil

	case KindMessage:
		ev := new(Message)
		if err := json.Unmarshal(raw, ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if ev.ConversationID == "" || ev.Content == "" {
			return nil, fmt.Errorf("%w: message requires conversationId and content", ErrMalformed)
		}
		return ev, nil

	case KindTyping:
		// isTyping is required; decoding through a pointer distinguishes an
		// explicit false from an absent field.
		var frame struct {
			ConversationID string `json:"conversationId"`
			IsTyping       *bool  `json:"isTyping"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if frame.ConversationID == "" || frame.IsTyping == nil {
			return nil, fmt.Errorf("%w: typing requires conversationId and isTyping", ErrMalformed)
		}
		return &Typing{ConversationID: frame.ConversationID, IsTyping: *frame.IsTyping}, nil

	case KindPing:
		return new(Ping), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
}
