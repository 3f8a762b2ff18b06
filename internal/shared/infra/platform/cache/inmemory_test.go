package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Nombre string `json:"nombre"`
}

func TestInMemoryCache_SetGetDelete(t *testing.T) {
	c := NewInMemoryCache(time.Minute, 0)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Nombre: "ACME"}, 0))

	var got payload
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "ACME", got.Nombre)

	require.NoError(t, c.Delete(ctx, "k"))
	hit, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInMemoryCache_Expiracion(t *testing.T) {
	c := NewInMemoryCache(time.Minute, 0)
	defer c.Stop()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", payload{Nombre: "x"}, 10))

	now = now.Add(11 * time.Second)
	var got payload
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit, "una clave expirada es un miss")

	c.purgeExpired()
	assert.Equal(t, 0, c.Len())
}

func TestTTLSeconds(t *testing.T) {
	assert.Equal(t, 0, TTLSeconds(0))
	assert.Equal(t, 1, TTLSeconds(500*time.Millisecond))
	assert.Equal(t, 1800, TTLSeconds(30*time.Minute))
}
