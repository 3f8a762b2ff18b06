package domain

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// ---------------- Filtros ----------------

// FilterKey es el nombre de un parámetro de filtro en la consulta remota.
type FilterKey string

const (
	KeyAnno       FilterKey = "anno"
	KeyAnnoMin    FilterKey = "anno_min"
	KeyAnnoMax    FilterKey = "anno_max"
	KeyModalidad  FilterKey = "modalidad"
	KeyDestino    FilterKey = "destino"
	KeyEntidad    FilterKey = "entidad"
	KeyCuantiaMin FilterKey = "cuantia_min"
	KeyCuantiaMax FilterKey = "cuantia_max"
	KeyEstado     FilterKey = "estado"
	KeyQ          FilterKey = "q"
)

// FilterKeys fija el orden canónico de serialización.
var FilterKeys = []FilterKey{
	KeyAnno,
	KeyAnnoMin,
	KeyAnnoMax,
	KeyModalidad,
	KeyDestino,
	KeyEntidad,
	KeyCuantiaMin,
	KeyCuantiaMax,
	KeyEstado,
	KeyQ,
}

var filterFields = map[FilterKey]string{
	KeyAnno:       FieldAnno,
	KeyAnnoMin:    FieldAnnoMin,
	KeyAnnoMax:    FieldAnnoMax,
	KeyModalidad:  FieldModalidad,
	KeyDestino:    FieldDestino,
	KeyEntidad:    FieldEntidad,
	KeyCuantiaMin: FieldCuantiaMin,
	KeyCuantiaMax: FieldCuantiaMax,
	KeyEstado:     FieldEstado,
	KeyQ:          FieldQ,
}

// FieldID devuelve el identificador del control asociado al filtro.
func (k FilterKey) FieldID() string {
	return filterFields[k]
}

// FilterSet es un valor inmutable: las claves con valor vacío no existen.
// Los valores no se validan; el servicio remoto decide qué es válido.
type FilterSet struct {
	values map[FilterKey]string
}

// NewFilterSet recorta cada valor y descarta los vacíos y las claves desconocidas.
func NewFilterSet(values map[FilterKey]string) FilterSet {
	f := FilterSet{values: make(map[FilterKey]string, len(values))}
	for k, v := range values {
		if _, known := filterFields[k]; !known {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			f.values[k] = v
		}
	}
	return f
}

// FiltersFromFields lee los diez filtros desde los controles.
func FiltersFromFields(src FieldSource) FilterSet {
	values := make(map[FilterKey]string, len(FilterKeys))
	for _, k := range FilterKeys {
		values[k] = ReadField(src, k.FieldID())
	}
	return NewFilterSet(values)
}

func (f FilterSet) Get(k FilterKey) string {
	return f.values[k]
}

// With devuelve una copia con el filtro actualizado; un valor vacío lo elimina.
func (f FilterSet) With(k FilterKey, v string) FilterSet {
	next := make(map[FilterKey]string, len(f.values)+1)
	for key, val := range f.values {
		next[key] = val
	}
	next[k] = v
	return NewFilterSet(next)
}

func (f FilterSet) IsEmpty() bool {
	return len(f.values) == 0
}

// Params devuelve los filtros presentes en orden canónico.
func (f FilterSet) Params() []Param {
	params := make([]Param, 0, len(f.values))
	for _, k := range FilterKeys {
		if v, ok := f.values[k]; ok {
			params = append(params, Param{Key: string(k), Value: v})
		}
	}
	return params
}

func (f FilterSet) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[string(k)] = v
	}
	return json.Marshal(out)
}

func (f *FilterSet) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	values := make(map[FilterKey]string, len(raw))
	for k, v := range raw {
		values[FilterKey(k)] = v
	}
	*f = NewFilterSet(values)
	return nil
}

// ---------------- Cursor de paginación ----------------

const (
	DefaultLimit       = 25
	DefaultOffset      = 0
	DefaultExportLimit = "5000"
)

// Cursor es la ventana (limit, offset) de la página actual.
type Cursor struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func DefaultCursor() Cursor {
	return Cursor{Limit: DefaultLimit, Offset: DefaultOffset}
}

// NewCursor normaliza: limit <= 0 pasa a 25 y offset < 0 pasa a 0.
func NewCursor(limit, offset int) Cursor {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = DefaultOffset
	}
	return Cursor{Limit: limit, Offset: offset}
}

// ParseCursor interpreta los textos de los controles limit y offset.
// Vacío o no numérico equivale al valor por defecto.
func ParseCursor(limitRaw, offsetRaw string) Cursor {
	limit, err := strconv.Atoi(strings.TrimSpace(limitRaw))
	if err != nil {
		limit = DefaultLimit
	}
	offset, err := strconv.Atoi(strings.TrimSpace(offsetRaw))
	if err != nil {
		offset = DefaultOffset
	}
	return NewCursor(limit, offset)
}

func CursorFromFields(src FieldSource) Cursor {
	return ParseCursor(ReadField(src, FieldLimit), ReadField(src, FieldOffset))
}

// Prev retrocede una página sin bajar de cero.
func (c Cursor) Prev() Cursor {
	return NewCursor(c.Limit, max(0, c.Offset-c.Limit))
}

// Next avanza una página. No se limita contra el total: un offset fuera de
// rango devuelve una página vacía desde el servicio remoto.
func (c Cursor) Next() Cursor {
	c = NewCursor(c.Limit, c.Offset)
	return Cursor{Limit: c.Limit, Offset: c.Offset + c.Limit}
}

// ---------------- Consulta canónica ----------------

// Param es un par clave/valor de la consulta.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CanonicalQuery es la lista ordenada de parámetros enviada al servicio remoto.
type CanonicalQuery struct {
	params []Param
}

// BuildQuery une filtros y cursor en el orden canónico.
func BuildQuery(f FilterSet, c Cursor) CanonicalQuery {
	c = NewCursor(c.Limit, c.Offset)
	params := f.Params()
	params = append(params,
		Param{Key: FieldLimit, Value: strconv.Itoa(c.Limit)},
		Param{Key: FieldOffset, Value: strconv.Itoa(c.Offset)},
	)
	return CanonicalQuery{params: params}
}

// QueryFromFields es build(read(fields)).
func QueryFromFields(src FieldSource) CanonicalQuery {
	return BuildQuery(FiltersFromFields(src), CursorFromFields(src))
}

func (q CanonicalQuery) Get(key string) (string, bool) {
	for _, p := range q.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Set reemplaza el valor en su posición o lo añade al final; un valor vacío no se añade.
func (q CanonicalQuery) Set(key, value string) CanonicalQuery {
	params := make([]Param, 0, len(q.params)+1)
	replaced := false
	for _, p := range q.params {
		if p.Key == key {
			replaced = true
			if value == "" {
				continue
			}
			p.Value = value
		}
		params = append(params, p)
	}
	if !replaced && value != "" {
		params = append(params, Param{Key: key, Value: value})
	}
	return CanonicalQuery{params: params}
}

func (q CanonicalQuery) Params() []Param {
	out := make([]Param, len(q.params))
	copy(out, q.params)
	return out
}

// Encode serializa como application/x-www-form-urlencoded respetando el orden.
func (q CanonicalQuery) Encode() string {
	var b strings.Builder
	for i, p := range q.params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

func (q CanonicalQuery) String() string {
	return q.Encode()
}

// ---------------- Exportaciones ----------------

type ExportKind string

const (
	ExportCSV  ExportKind = "csv"
	ExportXLSX ExportKind = "xlsx"
)

// ParseExportKind acepta "csv" o "xlsx".
func ParseExportKind(raw string) (ExportKind, error) {
	switch k := ExportKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case ExportCSV, ExportXLSX:
		return k, nil
	default:
		return "", ErrUnknownExport
	}
}

// ExportOptions son los controles propios de la exportación.
type ExportOptions struct {
	Cols  string `json:"cols"`
	Limit string `json:"limit"`
}

func ExportOptionsFromFields(src FieldSource) ExportOptions {
	return ExportOptions{
		Cols:  ReadField(src, FieldCols),
		Limit: ReadField(src, FieldXlsxLimit),
	}
}

// BuildExportQuery extiende la consulta base. CSV añade cols si existe; XLSX
// además sustituye limit por el límite de exportación (5000 por defecto).
func BuildExportQuery(kind ExportKind, f FilterSet, c Cursor, opts ExportOptions) CanonicalQuery {
	q := BuildQuery(f, c)
	q = q.Set(FieldCols, strings.TrimSpace(opts.Cols))
	if kind == ExportXLSX {
		limit := strings.TrimSpace(opts.Limit)
		if limit == "" {
			limit = DefaultExportLimit
		}
		q = q.Set(FieldLimit, limit)
	}
	return q
}
