package session

import (
	"context"
	"fmt"
	"time"

	"github.com/davicafu/secopviewer/internal/procesos/domain"
	sharedCache "github.com/davicafu/secopviewer/internal/shared/infra/platform/cache"
)

// CacheStateStore guarda el BrowseState de cada sesión en la caché compartida
// (Redis o memoria) con el TTL de sesión.
type CacheStateStore struct {
	cache sharedCache.Cache
	ttl   time.Duration
}

var _ domain.SessionStore = (*CacheStateStore)(nil)

func NewCacheStateStore(cache sharedCache.Cache, ttl time.Duration) *CacheStateStore {
	return &CacheStateStore{cache: cache, ttl: ttl}
}

func (s *CacheStateStore) Load(ctx context.Context, sessionID string) (domain.BrowseState, error) {
	var st domain.BrowseState
	hit, err := s.cache.Get(ctx, domain.SessionCacheKey(sessionID), &st)
	if err != nil {
		return domain.BrowseState{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !hit {
		return domain.BrowseState{}, domain.ErrSessionNotFound
	}
	return st.Normalize(), nil
}

func (s *CacheStateStore) Save(ctx context.Context, sessionID string, st domain.BrowseState) error {
	if err := s.cache.Set(ctx, domain.SessionCacheKey(sessionID), st, sharedCache.TTLSeconds(s.ttl)); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

func (s *CacheStateStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, domain.SessionCacheKey(sessionID))
}
