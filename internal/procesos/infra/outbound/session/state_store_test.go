package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/davicafu/secopviewer/internal/procesos/domain"
	"github.com/davicafu/secopviewer/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCacheDown = errors.New("cache down")

// brokenCache falla en todas las operaciones y recuerda el último TTL pedido.
type brokenCache struct {
	lastTTL int
}

func (c *brokenCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, errCacheDown
}

func (c *brokenCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	c.lastTTL = ttlSecs
	return errCacheDown
}

func (c *brokenCache) Delete(ctx context.Context, key string) error {
	return errCacheDown
}

func TestCacheStateStore_SaveLoad(t *testing.T) {
	cache := mocks.NewDummyCache()
	store := NewCacheStateStore(cache, 30*time.Minute)
	ctx := context.Background()

	chip, err := domain.FindChip("celebrado")
	require.NoError(t, err)
	st := domain.InitialState().
		ApplyFields(domain.MapSource{
			domain.FieldEntidad:   "ACME",
			domain.FieldLimit:     "50",
			domain.FieldXlsxLimit: "900",
		}).
		SelectChip(chip).
		NextPage()

	require.NoError(t, store.Save(ctx, "abc", st))
	assert.True(t, cache.Has(domain.SessionCacheKey("abc")))

	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, st.Query().Encode(), got.Query().Encode())
	assert.Equal(t, "celebrado", got.ActiveChip)
	assert.Equal(t, "900", got.Export.Limit)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCacheStateStore_SinSesion(t *testing.T) {
	store := NewCacheStateStore(mocks.NewDummyCache(), time.Minute)

	_, err := store.Load(context.Background(), "desconocida")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCacheStateStore_CacheCaida(t *testing.T) {
	cache := &brokenCache{}
	store := NewCacheStateStore(cache, 90*time.Second)
	ctx := context.Background()

	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, errCacheDown)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)

	err = store.Save(ctx, "abc", domain.InitialState())
	assert.ErrorIs(t, err, errCacheDown)
	assert.Equal(t, 90, cache.lastTTL)
}
