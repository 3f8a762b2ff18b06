package domain

import "strings"

// ---------------- Chips ----------------

// Chip es un filtro predefinido de un clic sobre estado_del_proceso.
type Chip struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Estado string `json:"estado"`
}

// ChipAll limpia el filtro de estado.
const ChipAll = "todos"

// Chips es la lista fija de filtros predefinidos.
var Chips = []Chip{
	{ID: ChipAll, Label: "Todos", Estado: ""},
	{ID: "convocado", Label: "Convocado", Estado: "Convocado"},
	{ID: "adjudicado", Label: "Adjudicado", Estado: "Adjudicado"},
	{ID: "celebrado", Label: "Celebrado", Estado: "Celebrado"},
	{ID: "liquidado", Label: "Liquidado", Estado: "Liquidado"},
	{ID: "terminado", Label: "Terminado sin Liquidar", Estado: "Terminado sin Liquidar"},
}

func FindChip(id string) (Chip, error) {
	id = strings.TrimSpace(id)
	for _, c := range Chips {
		if c.ID == id {
			return c, nil
		}
	}
	return Chip{}, ErrUnknownChip
}

// ---------------- Estado de navegación ----------------

// BrowseState agrupa filtros, cursor, opciones de exportación y chip activo.
// Es un valor: cada transición devuelve un estado nuevo.
type BrowseState struct {
	Filters    FilterSet     `json:"filters"`
	Cursor     Cursor        `json:"cursor"`
	Export     ExportOptions `json:"export"`
	ActiveChip string        `json:"active_chip"`
}

func InitialState() BrowseState {
	return BrowseState{
		Filters:    NewFilterSet(nil),
		Cursor:     DefaultCursor(),
		ActiveChip: ChipAll,
	}
}

// ApplyFields reemplaza el estado con lo leído de los controles. El chip
// activo se conserva solo si sigue coincidiendo con el filtro de estado.
func (s BrowseState) ApplyFields(src FieldSource) BrowseState {
	next := BrowseState{
		Filters: FiltersFromFields(src),
		Cursor:  CursorFromFields(src),
		Export:  ExportOptionsFromFields(src),
	}
	next.ActiveChip = chipFor(s.ActiveChip, next.Filters.Get(KeyEstado))
	return next
}

// Reset vacía todos los filtros y cols, deja limit=25 y offset=0 y conserva
// el límite de exportación. No dispara ninguna consulta.
func (s BrowseState) Reset() BrowseState {
	return BrowseState{
		Filters:    NewFilterSet(nil),
		Cursor:     DefaultCursor(),
		Export:     ExportOptions{Limit: s.Export.Limit},
		ActiveChip: ChipAll,
	}
}

func (s BrowseState) PrevPage() BrowseState {
	s.Cursor = s.Cursor.Prev()
	return s
}

func (s BrowseState) NextPage() BrowseState {
	s.Cursor = s.Cursor.Next()
	return s
}

// SelectChip activa un único chip y fija (o limpia) el filtro de estado.
func (s BrowseState) SelectChip(c Chip) BrowseState {
	s.Filters = s.Filters.With(KeyEstado, c.Estado)
	s.ActiveChip = c.ID
	return s
}

func (s BrowseState) Query() CanonicalQuery {
	return BuildQuery(s.Filters, s.Cursor)
}

func (s BrowseState) ExportQuery(kind ExportKind) CanonicalQuery {
	return BuildExportQuery(kind, s.Filters, s.Cursor, s.Export)
}

// Normalize repara un estado restaurado desde almacenamiento.
func (s BrowseState) Normalize() BrowseState {
	s.Cursor = NewCursor(s.Cursor.Limit, s.Cursor.Offset)
	if s.Filters.values == nil {
		s.Filters = NewFilterSet(nil)
	}
	s.ActiveChip = chipFor(s.ActiveChip, s.Filters.Get(KeyEstado))
	return s
}

func chipFor(current, estado string) string {
	if c, err := FindChip(current); err == nil && c.Estado == estado {
		return c.ID
	}
	for _, c := range Chips {
		if c.Estado == estado {
			return c.ID
		}
	}
	return ""
}
