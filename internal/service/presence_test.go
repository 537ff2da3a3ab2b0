package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatwire/realtime-service/internal/domain/model"
	"github.com/chatwire/realtime-service/internal/domain/registry"
)

// slowConvStore delays membership lookups and honors context cancellation,
// the way the HTTP-backed store does.
type slowConvStore struct {
	*fakeStore
	delay time.Duration
}

func (s slowConvStore) UserConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return s.fakeStore.UserConversations(ctx, userID)
	}
}

func presenceFixture(t *testing.T) (*Presence, *fakeStore, *fakeBus, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	store := newFakeStore()
	bus := &fakeBus{}
	cast := NewBroadcaster(reg, discardLogger())
	p := NewPresence(store, store, cast, bus, discardLogger())
	return p, store, bus, reg
}

func TestAudienceDeduplicatesAndExcludesSelf(t *testing.T) {
	p, store, _, _ := presenceFixture(t)

	alice := model.User{ID: "alice"}
	bob := model.User{ID: "bob"}
	carol := model.User{ID: "carol"}

	// Bob shares two conversations with Alice; he must appear once.
	store.addConversation(model.Conversation{ID: "c1", Members: []model.User{alice, bob}})
	store.addConversation(model.Conversation{ID: "c2", Members: []model.User{alice, bob, carol}})

	audience, err := p.Audience(context.Background(), "alice")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"bob", "carol"}, audience)
}

func TestAudienceEmptyWithoutConversations(t *testing.T) {
	p, _, _, _ := presenceFixture(t)

	audience, err := p.Audience(context.Background(), "loner")
	require.NoError(t, err)
	require.Empty(t, audience)
}

func TestOnlineTransitionNotifiesAudienceAndReconcilesCache(t *testing.T) {
	p, store, bus, reg := presenceFixture(t)

	store.addConversation(model.Conversation{ID: "c1", Members: []model.User{{ID: "alice"}, {ID: "bob"}}})
	bobSess := registry.NewSession(context.Background(), 16)
	reg.Add("bob", bobSess)

	p.HandleOnline(context.Background(), "alice")

	ev := recvEvent(t, bobSess)
	require.Equal(t, "user_status", ev["type"])
	require.Equal(t, "alice", ev["userId"])
	require.Equal(t, "online", ev["status"])

	require.Equal(t, []string{"online"}, store.statusWrites("alice"))
	require.Equal(t, 1, bus.published(TopicUserStatus))
}

func TestOfflineBroadcastSurvivesStatusCacheFailure(t *testing.T) {
	reg := registry.New()
	store := newFakeStore()
	store.statusErr = errors.New("status cache down")
	store.addConversation(model.Conversation{ID: "c1", Members: []model.User{{ID: "alice"}, {ID: "bob"}}})

	bobSess := registry.NewSession(context.Background(), 16)
	reg.Add("bob", bobSess)

	// The cache write fails instantly while the membership query is still in
	// flight; the failure must not cancel it.
	cast := NewBroadcaster(reg, discardLogger())
	convs := slowConvStore{fakeStore: store, delay: 20 * time.Millisecond}
	p := NewPresence(convs, store, cast, &fakeBus{}, discardLogger())

	p.HandleOffline(context.Background(), "alice")

	ev := recvEvent(t, bobSess)
	require.Equal(t, "user_status", ev["type"])
	require.Equal(t, "alice", ev["userId"])
	require.Equal(t, "offline", ev["status"])
}

func TestOfflineTransitionDoesNotReachSelf(t *testing.T) {
	p, store, _, reg := presenceFixture(t)

	store.addConversation(model.Conversation{ID: "c1", Members: []model.User{{ID: "alice"}, {ID: "bob"}}})
	aliceSess := registry.NewSession(context.Background(), 16)
	reg.Add("alice", aliceSess)

	p.HandleOffline(context.Background(), "alice")

	// The affected user is excluded from their own audience.
	requireNoEvent(t, aliceSess)
	require.Equal(t, []string{"offline"}, store.statusWrites("alice"))
}
