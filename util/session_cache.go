// api/util/session_cache.go

package util

import (
	"context"

	"github.com/atlasgrc/atlas/api/db"
	"github.com/atlasgrc/atlas/api/model"
)

// SessionCache fronts the Redis session snapshot store.
type SessionCache struct{}

func NewSessionCache() *SessionCache {
	return &SessionCache{}
}

func (c *SessionCache) GetSnapshot(ctx context.Context, userID string) (*model.SessionSnapshot, error) {
	return db.GetCachedSessionSnapshot(ctx, userID)
}

func (c *SessionCache) SetSnapshot(ctx context.Context, snapshot model.SessionSnapshot) error {
	return db.CacheSessionSnapshot(ctx, &snapshot)
}

func (c *SessionCache) DeleteSnapshot(ctx context.Context, userID string) error {
	return db.DeleteCachedSessionSnapshot(ctx, userID)
}
