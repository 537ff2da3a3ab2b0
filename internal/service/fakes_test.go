package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatwire/realtime-service/internal/domain/model"
	"github.com/chatwire/realtime-service/internal/domain/registry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeVerifier resolves tokens from a fixed table.
type fakeVerifier struct {
	tokens map[string]string // token -> userID
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (string, error) {
	if id, ok := f.tokens[token]; ok {
		return id, nil
	}
	return "", ErrInvalidToken
}

// fakeStore backs all three store ports in memory. Presence transitions call
// it from concurrent goroutines, so every method locks.
type fakeStore struct {
	mu        sync.Mutex
	users     map[string]*model.User
	convs     map[string]model.Conversation // conversationID -> conversation
	userConvs map[string][]string           // userID -> conversationIDs
	statuses  map[string][]string           // userID -> status writes, in order
	sent      []SendMessageInput
	sendErr   error
	statusErr error
	nextMsgID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*model.User),
		convs:     make(map[string]model.Conversation),
		userConvs: make(map[string][]string),
		statuses:  make(map[string][]string),
	}
}

func (f *fakeStore) addUser(u *model.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

func (f *fakeStore) addConversation(conv model.Conversation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.convs[conv.ID] = conv
	for _, m := range conv.Members {
		f.userConvs[m.ID] = append(f.userConvs[m.ID], conv.ID)
	}
}

func (f *fakeStore) GetUser(_ context.Context, userID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, fmt.Errorf("no such user %s", userID)
	}
	return u, nil
}

func (f *fakeStore) SetStatus(_ context.Context, userID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statuses[userID] = append(f.statuses[userID], status)
	return nil
}

func (f *fakeStore) statusWrites(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.statuses[userID]))
	copy(out, f.statuses[userID])
	return out
}

func (f *fakeStore) UserConversations(_ context.Context, userID string) ([]model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Conversation
	for _, id := range f.userConvs[userID] {
		out = append(out, f.convs[id])
	}
	return out, nil
}

func (f *fakeStore) Members(_ context.Context, conversationID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.convs[conversationID]
	if !ok {
		return nil, fmt.Errorf("no such conversation %s", conversationID)
	}
	var ids []string
	for _, m := range conv.Members {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (f *fakeStore) SendMessage(_ context.Context, in SendMessageInput) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, in)
	f.nextMsgID++
	return &model.Message{
		ID:             fmt.Sprintf("m%d", f.nextMsgID),
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		Type:           in.Type,
		FileURL:        in.FileURL,
		FileName:       in.FileName,
		CreatedAt:      time.Now().UnixMilli(),
	}, nil
}

// fakeBus records dispatched events.
type fakeBus struct {
	mu     sync.Mutex
	topics []string
}

func (f *fakeBus) Dispatch(_ context.Context, topic string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	return nil
}

func (f *fakeBus) published(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, tp := range f.topics {
		if tp == topic {
			n++
		}
	}
	return n
}

// recvEvent pops one frame off a session outbox and decodes it.
func recvEvent(t *testing.T, sess *registry.Session) map[string]any {
	t.Helper()
	select {
	case data := <-sess.Outbox():
		var out map[string]any
		require.NoError(t, json.Unmarshal(data, &out))
		return out
	default:
		t.Fatal("expected an event in the session outbox")
		return nil
	}
}

// recvRaw pops one frame without decoding, for byte-identity assertions.
func recvRaw(t *testing.T, sess *registry.Session) []byte {
	t.Helper()
	select {
	case data := <-sess.Outbox():
		return data
	default:
		t.Fatal("expected a frame in the session outbox")
		return nil
	}
}

func requireNoEvent(t *testing.T, sess *registry.Session) {
	t.Helper()
	select {
	case data := <-sess.Outbox():
		t.Fatalf("unexpected event in outbox: %s", data)
	default:
	}
}
