package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ---------------- Columnas visibles ----------------

// Column es una columna de la lista cerrada de columnas visibles.
type Column string

const (
	ColUID                     Column = "uid"
	ColAnnoFirmaContrato       Column = "anno_firma_contrato"
	ColModalidadDeContratacion Column = "modalidad_de_contratacion"
	ColEstadoDelProceso        Column = "estado_del_proceso"
	ColCuantiaProceso          Column = "cuantia_proceso"
	ColNombreEntidad           Column = "nombre_entidad"
	ColDatasetUpdatedAt        Column = "dataset_updated_at"
)

// DisplayColumns es la lista de columnas permitidas, en orden de presentación.
var DisplayColumns = []Column{
	ColUID,
	ColAnnoFirmaContrato,
	ColModalidadDeContratacion,
	ColEstadoDelProceso,
	ColCuantiaProceso,
	ColNombreEntidad,
	ColDatasetUpdatedAt,
}

func isDisplayColumn(name string) (Column, bool) {
	for _, c := range DisplayColumns {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// ---------------- Record ----------------

// Record es una fila de proceso tipada sobre la lista cerrada de columnas.
// Una columna ausente no tiene valor; una columna con null tiene valor "".
type Record struct {
	cells   map[Column]string
	ignored []string
}

// NewRecord construye un Record con celdas ya en texto.
func NewRecord(cells map[Column]string) Record {
	r := Record{cells: make(map[Column]string, len(cells))}
	for c, v := range cells {
		if _, ok := isDisplayColumn(string(c)); ok {
			r.cells[c] = v
		}
	}
	return r
}

// DecodeRecord proyecta un objeto JSON sobre las columnas visibles y
// registra los campos ajenos en Ignored.
func DecodeRecord(raw map[string]json.RawMessage) Record {
	r := Record{cells: make(map[Column]string, len(DisplayColumns))}
	for name, value := range raw {
		col, ok := isDisplayColumn(name)
		if !ok {
			r.ignored = append(r.ignored, name)
			continue
		}
		r.cells[col] = DisplayValue(value)
	}
	sort.Strings(r.ignored)
	return r
}

// UnmarshalJSON acepta cualquier fila: null o un valor que no sea objeto
// queda como fila sin celdas.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = nil
	}
	*r = DecodeRecord(raw)
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(r.cells))
	for c, v := range r.cells {
		out[string(c)] = v
	}
	return json.Marshal(out)
}

// Value devuelve el texto de la celda y si la columna estaba presente.
func (r Record) Value(c Column) (string, bool) {
	v, ok := r.cells[c]
	return v, ok
}

func (r Record) Has(c Column) bool {
	_, ok := r.cells[c]
	return ok
}

// Ignored lista, ordenados, los campos recibidos fuera de la lista de columnas.
func (r Record) Ignored() []string {
	return append([]string(nil), r.ignored...)
}

// ---------------- Tabla ----------------

// TableModel es la tabla lista para pintarse tal cual.
type TableModel struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// RenderTable elige columnas a partir de la primera fila (en el orden de
// DisplayColumns) y proyecta cada fila; sin filas, cabecera completa.
func RenderTable(items []Record) TableModel {
	var selected []Column
	if len(items) == 0 {
		selected = DisplayColumns
	} else {
		for _, c := range DisplayColumns {
			if items[0].Has(c) {
				selected = append(selected, c)
			}
		}
	}

	table := TableModel{
		Header: make([]string, len(selected)),
		Rows:   make([][]string, 0, len(items)),
	}
	for i, c := range selected {
		table.Header[i] = string(c)
	}
	for _, item := range items {
		row := make([]string, len(selected))
		for i, c := range selected {
			row[i], _ = item.Value(c)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// ---------------- Texto de presentación ----------------

// DisplayValue convierte un escalar JSON en texto: null queda vacío, los
// números se escriben sin ceros sobrantes.
func DisplayValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		return s
	case 't', 'f':
		return string(raw)
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	default:
		return DisplayNumber(string(raw))
	}
}

// DisplayNumber normaliza un literal numérico JSON ("1500000.0" → "1500000").
func DisplayNumber(lit string) string {
	if !strings.ContainsAny(lit, ".eE") {
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
