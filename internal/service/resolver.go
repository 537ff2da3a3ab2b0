package service

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chatwire/realtime-service/internal/domain/model"
)

const profileCacheSize = 10000

// ProfileResolver fetches user records with a cache-aside LRU in front of the
// user store. Profiles feed auth_success payloads and typing display names;
// they are display data, so a slightly stale hit is acceptable. Presence and
// audience decisions never go through this cache.
type ProfileResolver struct {
	users UserStore
	cache *lru.Cache[string, *model.User]
}

func NewProfileResolver(users UserStore) *ProfileResolver {
	cache, _ := lru.New[string, *model.User](profileCacheSize)
	return &ProfileResolver{
		users: users,
		cache: cache,
	}
}

// Resolve returns the profile for userID, hitting the store only on cache
// miss.
func (r *ProfileResolver) Resolve(ctx context.Context, userID string) (*model.User, error) {
	if cached, ok := r.cache.Get(userID); ok {
		return cached, nil
	}

	user, err := r.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve profile %s: %w", userID, err)
	}

	r.cache.Add(userID, user)
	return user, nil
}

// Invalidate drops a cached profile, e.g. after a known profile update.
func (r *ProfileResolver) Invalidate(userID string) {
	r.cache.Remove(userID)
}
