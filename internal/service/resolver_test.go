package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatwire/realtime-service/internal/domain/model"
)

func TestProfileResolverCachesLookups(t *testing.T) {
	store := newFakeStore()
	store.addUser(&model.User{ID: "alice", Name: "Alice"})
	r := NewProfileResolver(store)

	first, err := r.Resolve(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", first.Name)

	// Mutate the backing store; the cached record keeps serving.
	store.addUser(&model.User{ID: "alice", Name: "Alicia"})
	second, err := r.Resolve(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", second.Name)

	r.Invalidate("alice")
	third, err := r.Resolve(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "Alicia", third.Name)
}

func TestProfileResolverPropagatesMiss(t *testing.T) {
	r := NewProfileResolver(newFakeStore())

	_, err := r.Resolve(context.Background(), "ghost")
	require.Error(t, err)
}
