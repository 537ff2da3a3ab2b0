// Package chatstore is the JSON-over-HTTP client for the data-access API
// that owns users, conversations, and messages. The realtime core consumes
// it as plain CRUD; every call runs behind a shared circuit breaker so a
// degraded backend sheds load instead of stalling connection handlers.
package chatstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/chatwire/realtime-service/internal/domain/model"
	"github.com/chatwire/realtime-service/internal/service"
)

// Client implements service.UserStore, service.ConversationStore and
// service.MessageStore against the chat data API.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var (
	_ service.UserStore         = (*Client)(nil)
	_ service.ConversationStore = (*Client)(nil)
	_ service.MessageStore      = (*Client)(nil)
)

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "chatstore",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		Timeout: 15 * time.Second,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("chatstore breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// GetUser fetches one profile record.
func (c *Client) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	path := fmt.Sprintf("/internal/users/%s", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodGet, path, nil, &user); err != nil {
		return nil, fmt.Errorf("chatstore: get user %s: %w", userID, err)
	}
	return &user, nil
}

// SetStatus updates the display-status cache for a user. Best effort from the
// caller's perspective: the registry remains the presence authority.
func (c *Client) SetStatus(ctx context.Context, userID, status string) error {
	path := fmt.Sprintf("/internal/users/%s/status", url.PathEscape(userID))
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("chatstore: set status for %s: %w", userID, err)
	}
	return nil
}

// UserConversations lists the conversations a user belongs to, with members.
func (c *Client) UserConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	var convs []model.Conversation
	path := fmt.Sprintf("/internal/users/%s/conversations", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodGet, path, nil, &convs); err != nil {
		return nil, fmt.Errorf("chatstore: conversations for %s: %w", userID, err)
	}
	return convs, nil
}

// Members lists the current member identities of one conversation.
func (c *Client) Members(ctx context.Context, conversationID string) ([]string, error) {
	var members []string
	path := fmt.Sprintf("/internal/conversations/%s/members", url.PathEscape(conversationID))
	if err := c.do(ctx, http.MethodGet, path, nil, &members); err != nil {
		return nil, fmt.Errorf("chatstore: members of %s: %w", conversationID, err)
	}
	return members, nil
}

type sendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Content        string `json:"content"`
	Type           string `json:"type"`
	FileURL        string `json:"fileUrl,omitempty"`
	FileName       string `json:"fileName,omitempty"`
}

// SendMessage persists a message and returns the stored record.
func (c *Client) SendMessage(ctx context.Context, in service.SendMessageInput) (*model.Message, error) {
	var msg model.Message
	req := sendMessageRequest{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		Type:           in.Type,
		FileURL:        in.FileURL,
		FileName:       in.FileName,
	}
	if err := c.do(ctx, http.MethodPost, "/internal/messages", req, &msg); err != nil {
		return nil, fmt.Errorf("chatstore: send message: %w", err)
	}
	return &msg, nil
}

// do runs one request through the breaker, encoding body and decoding the
// response into out when non-nil. Non-2xx responses count as failures.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	_, err := c.breaker.Execute(func() (any, error) {
		var reader io.Reader
		if body != nil {
			buf, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("encode request: %w", err)
			}
			reader = bytes.NewReader(buf)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || res.StatusCode > 299 {
			return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
		}
		if out != nil {
			if err := json.NewDecoder(res.Body).Decode(out); err != nil {
				return nil, fmt.Errorf("decode response: %w", err)
			}
		}
		return nil, nil
	})
	return err
}
