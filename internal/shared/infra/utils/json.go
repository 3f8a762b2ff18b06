package utils

import (
	"encoding/json"

	"go.uber.org/zap"
)

// DecodeEvent decodifica los datos de un evento de integración en T y los
// entrega a handle. Devuelve false si no hay datos o no encajan en T.
func DecodeEvent[T any](log *zap.Logger, eventType string, data json.RawMessage, handle func(T)) bool {
	if len(data) == 0 {
		log.Warn("Event without data", zap.String("type", eventType))
		return false
	}

	var evt T
	if err := json.Unmarshal(data, &evt); err != nil {
		log.Warn("Failed to decode event data", zap.String("type", eventType), zap.Error(err))
		return false
	}
	handle(evt)
	return true
}
