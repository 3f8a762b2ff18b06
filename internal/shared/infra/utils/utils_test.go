package utils

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFirstNonZero(t *testing.T) {
	assert.Equal(t, "sesion", FirstNonZero("", "sesion", "anonymous"))
	assert.Equal(t, "anonymous", FirstNonZero("", "anonymous"))
	assert.Equal(t, 2, FirstNonZero(0, 2, 3))
	assert.Equal(t, "", FirstNonZero[string]())
}

func TestRetry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return errors.New("temporal")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	errDown := errors.New("caído")
	err = Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return errDown
	})
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, 3, calls)
}

func TestRetry_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, 5, time.Second, func() error {
		calls++
		return errors.New("x")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDecodeEvent(t *testing.T) {
	type evento struct {
		ID string `json:"id"`
	}

	var got evento
	ok := DecodeEvent(zap.NewNop(), "prueba", json.RawMessage(`{"id":"a"}`), func(e evento) { got = e })
	assert.True(t, ok)
	assert.Equal(t, "a", got.ID)

	called := false
	assert.False(t, DecodeEvent(zap.NewNop(), "prueba", json.RawMessage(`no-json`), func(e evento) { called = true }))
	assert.False(t, DecodeEvent(zap.NewNop(), "prueba", nil, func(e evento) { called = true }))
	assert.False(t, called)
}
