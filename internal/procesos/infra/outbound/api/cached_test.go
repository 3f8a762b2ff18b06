package api

import (
	"context"
	"testing"
	"time"

	"github.com/davicafu/secopviewer/internal/procesos/domain"
	"github.com/davicafu/secopviewer/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCachedGateway_Catalog(t *testing.T) {
	gw := &mocks.FakeGateway{Values: []string{"2023", "2024"}}
	cache := mocks.NewDummyCache()
	cached := NewCachedGateway(gw, cache, time.Minute, zap.NewNop())
	ctx := context.Background()

	got, err := cached.Catalog(ctx, "anno_firma_contrato", "", 200)
	require.NoError(t, err)
	assert.Equal(t, []string{"2023", "2024"}, got)

	key := domain.CatalogCacheKey("anno_firma_contrato", "", 200)
	assert.Eventually(t, func() bool { return cache.Has(key) }, time.Second, 5*time.Millisecond)

	got, err = cached.Catalog(ctx, "anno_firma_contrato", "", 200)
	require.NoError(t, err)
	assert.Equal(t, []string{"2023", "2024"}, got)
	assert.Equal(t, []string{"anno_firma_contrato"}, gw.CatalogCalls(), "la segunda consulta sale de caché")
}

func TestCachedGateway_ErrorNoSeCachea(t *testing.T) {
	gw := &mocks.FakeGateway{CatalogErr: domain.ErrUpstreamStatus}
	cache := mocks.NewDummyCache()
	cached := NewCachedGateway(gw, cache, time.Minute, zap.NewNop())

	_, err := cached.Catalog(context.Background(), "destino_gasto", "x", 10)
	assert.ErrorIs(t, err, domain.ErrUpstreamStatus)

	time.Sleep(20 * time.Millisecond)
	assert.False(t, cache.Has(domain.CatalogCacheKey("destino_gasto", "x", 10)))
}

func TestCachedGateway_DelegaElResto(t *testing.T) {
	gw := &mocks.FakeGateway{BaseURL: "http://datos"}
	cached := NewCachedGateway(gw, mocks.NewDummyCache(), time.Minute, zap.NewNop())

	_, err := cached.SyncStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gw.StatusCalls())
	assert.Equal(t, "http://datos/export/csv?limit=25&offset=0", cached.ExportURL(domain.ExportCSV, domain.BuildQuery(domain.FilterSet{}, domain.DefaultCursor())))
}
