package events

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"go.uber.org/zap"

	procesosDomain "github.com/davicafu/secopviewer/internal/procesos/domain"
	sharedEvents "github.com/davicafu/secopviewer/internal/shared/events"
	sharedUtils "github.com/davicafu/secopviewer/internal/shared/infra/utils"
)

// ExportConsumer deja constancia en el log de cada exportación relayada
// desde la outbox.
type ExportConsumer struct {
	log     *zap.Logger
	handled atomic.Int64
}

func NewExportConsumer(logger *zap.Logger) *ExportConsumer {
	return &ExportConsumer{log: logger}
}

func (c *ExportConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case procesosDomain.ExportRequested:
		if sharedUtils.DecodeEvent(c.log, base.Type, base.Data, c.logExport) {
			c.handled.Add(1)
		}

	default:
		c.log.Warn("Unknown event type", zap.String("type", base.Type))
	}
}

func (c *ExportConsumer) logExport(evt procesosDomain.ExportRequestedEvent) {
	c.log.Info("Export requested",
		zap.String("session_id", evt.SessionID),
		zap.String("kind", string(evt.Kind)),
		zap.String("query", evt.Query),
		zap.Time("requested_at", evt.RequestedAt),
	)
}

// Handled devuelve cuántas exportaciones se han registrado.
func (c *ExportConsumer) Handled() int64 {
	return c.handled.Load()
}
