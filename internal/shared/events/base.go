package events

import (
	"encoding/json"
	"reflect"
	"time"
)

// Base de todos los eventos de integración
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento
	Key       string          `json:"-"`    // clave de partición, no viaja en el cuerpo
}

func (e IntegrationEvent) PartitionKey() string {
	return e.Key
}

// EventMetadata indica a qué tipo se decodifica el payload y a qué topic va.
type EventMetadata struct {
	Type  reflect.Type
	Topic string
}
