package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	procesosDomain "github.com/davicafu/secopviewer/internal/procesos/domain"
	sharedEvents "github.com/davicafu/secopviewer/internal/shared/events"
	infraEvents "github.com/davicafu/secopviewer/internal/shared/infra/events"
)

func integrationPayload(t *testing.T, typ string, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	out, err := json.Marshal(sharedEvents.IntegrationEvent{Type: typ, Timestamp: time.Now().UTC(), Data: raw})
	require.NoError(t, err)
	return out
}

func TestExportConsumer_HandleMessage(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	consumer := NewExportConsumer(zap.New(core))

	payload := integrationPayload(t, procesosDomain.ExportRequested, procesosDomain.ExportRequestedEvent{
		SessionID: "s-1",
		Kind:      procesosDomain.ExportCSV,
		Query:     "entidad=ACME&limit=25&offset=0",
	})
	consumer.HandleMessage(context.Background(), "s-1", payload)

	assert.EqualValues(t, 1, consumer.Handled())
	entries := logs.FilterMessage("Export requested").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "s-1", entries[0].ContextMap()["session_id"])
	assert.Equal(t, "csv", entries[0].ContextMap()["kind"])
}

func TestExportConsumer_MensajesInvalidos(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	consumer := NewExportConsumer(zap.New(core))
	ctx := context.Background()

	consumer.HandleMessage(ctx, "", []byte("no-json"))
	consumer.HandleMessage(ctx, "", integrationPayload(t, "otro.evento", map[string]string{}))
	consumer.HandleMessage(ctx, "", integrationPayload(t, procesosDomain.ExportRequested, "no-es-un-objeto"))

	assert.EqualValues(t, 0, consumer.Handled())
	assert.Equal(t, 1, logs.FilterMessage("Failed to decode event data").Len())
	assert.Equal(t, 1, logs.FilterMessage("Failed to unmarshal integration event").Len())
	assert.Equal(t, 1, logs.FilterMessage("Unknown event type").Len())
}

func TestExportConsumer_DesdeBusEnMemoria(t *testing.T) {
	consumer := NewExportConsumer(zap.NewNop())
	bus := infraEvents.NewInMemoryEventBus(procesosDomain.ProcesosTopic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	infraEvents.Dispatch(ctx, bus.Subscribe(4), consumer)

	data, err := json.Marshal(procesosDomain.ExportRequestedEvent{SessionID: "s-2", Kind: procesosDomain.ExportXLSX})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, sharedEvents.IntegrationEvent{
		Type: procesosDomain.ExportRequested,
		Data: data,
		Key:  "s-2",
	}))

	assert.Eventually(t, func() bool { return consumer.Handled() == 1 }, time.Second, 10*time.Millisecond)
}
