package api

import (
	"context"
	"time"

	"github.com/davicafu/secopviewer/internal/procesos/domain"
	sharedCache "github.com/davicafu/secopviewer/internal/shared/infra/platform/cache"
	"go.uber.org/zap"
)

// CachedGateway guarda en caché las consultas de catálogo. El resto de
// operaciones va siempre al servicio remoto.
type CachedGateway struct {
	domain.ProcesosGateway
	cache sharedCache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

var _ domain.ProcesosGateway = (*CachedGateway)(nil)

func NewCachedGateway(gw domain.ProcesosGateway, cache sharedCache.Cache, ttl time.Duration, log *zap.Logger) *CachedGateway {
	return &CachedGateway{ProcesosGateway: gw, cache: cache, ttl: ttl, log: log}
}

func (g *CachedGateway) Catalog(ctx context.Context, catalog, search string, limit int) ([]string, error) {
	key := domain.CatalogCacheKey(catalog, search, limit)

	var values []string
	if found, err := g.cache.Get(ctx, key, &values); err == nil && found {
		g.log.Debug("Catalog cache hit", zap.String("key", key))
		return values, nil
	} else if err != nil {
		g.log.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	values, err := g.ProcesosGateway.Catalog(ctx, catalog, search, limit)
	if err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, g.cache, key, values, sharedCache.TTLSeconds(g.ttl), g.log)
	return values, nil
}
