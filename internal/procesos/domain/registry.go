package domain

import (
	"reflect"
	"time"

	sharedEvents "github.com/davicafu/secopviewer/internal/shared/events"
	sharedBus "github.com/davicafu/secopviewer/internal/shared/infra/platform/bus"
)

const (
	ExportRequested = "procesos.export.requested"
)

const ProcesosTopic = "procesos"

// ExportRequestedEvent registra una exportación pedida desde una sesión.
type ExportRequestedEvent struct {
	SessionID   string     `json:"session_id"`
	Kind        ExportKind `json:"kind"`
	Query       string     `json:"query"`
	URL         string     `json:"url"`
	RequestedAt time.Time  `json:"requested_at"`
}

func (e *ExportRequestedEvent) PartitionKey() string {
	return e.SessionID
}

// Verificación estática para asegurar que el evento implementa la interfaz
var _ sharedBus.Keyer = (*ExportRequestedEvent)(nil)

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		ExportRequested: {
			Type:  reflect.TypeOf(ExportRequestedEvent{}),
			Topic: ProcesosTopic,
		},
	}
}
