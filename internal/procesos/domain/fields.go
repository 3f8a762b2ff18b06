package domain

import (
	"net/url"
	"strings"
)

// ---------------- Controles del formulario ----------------

// Identificadores de los controles de entrada del navegador de procesos.
const (
	FieldAnno       = "anno"
	FieldAnnoMin    = "anno-min"
	FieldAnnoMax    = "anno-max"
	FieldModalidad  = "modalidad"
	FieldDestino    = "destino"
	FieldEntidad    = "entidad"
	FieldCuantiaMin = "cuantia-min"
	FieldCuantiaMax = "cuantia-max"
	FieldEstado     = "estado"
	FieldQ          = "q"
	FieldLimit      = "limit"
	FieldOffset     = "offset"
	FieldCols       = "cols"
	FieldXlsxLimit  = "xlsx-limit"
)

// FieldSource es cualquier origen de valores de controles (formulario HTTP, flags, tests).
type FieldSource interface {
	// Lookup devuelve el valor crudo del control y si el control existe.
	Lookup(id string) (string, bool)
}

// FormValues adapta url.Values (formulario o query string) a FieldSource.
type FormValues url.Values

func (v FormValues) Lookup(id string) (string, bool) {
	vals, ok := v[id]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// MapSource es un FieldSource en memoria.
type MapSource map[string]string

func (m MapSource) Lookup(id string) (string, bool) {
	v, ok := m[id]
	return v, ok
}

// ReadField devuelve el valor del control sin espacios al inicio ni al final.
// Un control inexistente se lee como cadena vacía, nunca como error.
func ReadField(src FieldSource, id string) string {
	if src == nil {
		return ""
	}
	v, ok := src.Lookup(id)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
