package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Placeholder se muestra cuando un campo no llega o llega en null.
const Placeholder = "-"

// ResultPage es la respuesta de /procesos. Un total ausente o ilegible
// cuenta como 0 y se marca con TotalUnknown; unos items ilegibles dejan la
// página vacía.
type ResultPage struct {
	Total        int      `json:"total"`
	TotalUnknown bool     `json:"-"`
	Items        []Record `json:"items"`
}

func (p *ResultPage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Total json.RawMessage `json:"total"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	total, ok := ParseTotal(raw.Total)
	page := ResultPage{Total: total, TotalUnknown: !ok, Items: []Record{}}
	if len(bytes.TrimSpace(raw.Items)) > 0 {
		var items []Record
		if err := json.Unmarshal(raw.Items, &items); err == nil && items != nil {
			page.Items = items
		}
	}
	*p = page
	return nil
}

// TotalLabel es el texto del indicador de total.
func (p ResultPage) TotalLabel() string {
	if p.TotalUnknown {
		return Placeholder
	}
	return strconv.Itoa(p.Total)
}

// ParseTotal lee un total como número JSON (3, 3.0) o como texto ("3").
// Ausente, negativo o no numérico devuelve (0, false).
func ParseTotal(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	lit := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &lit); err != nil {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(lit), 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ---------------- Resumen ----------------

// Summary es la respuesta de /stats/resumen; todos los campos son opcionales.
type Summary struct {
	Total                json.RawMessage `json:"total,omitempty"`
	TotalCuantiaProceso  json.RawMessage `json:"total_cuantia_proceso,omitempty"`
	TotalCuantiaContrato json.RawMessage `json:"total_cuantia_contrato,omitempty"`
	MinAnnoFirma         json.RawMessage `json:"min_anno_firma_contrato,omitempty"`
	MaxAnnoFirma         json.RawMessage `json:"max_anno_firma_contrato,omitempty"`
}

// SummaryView son los cinco campos del resumen ya en texto.
type SummaryView struct {
	Total           string `json:"total"`
	CuantiaProceso  string `json:"cuantia_proceso"`
	CuantiaContrato string `json:"cuantia_contrato"`
	AnnoMin         string `json:"anno_min"`
	AnnoMax         string `json:"anno_max"`
}

func EmptySummaryView() SummaryView {
	return SummaryView{
		Total:           Placeholder,
		CuantiaProceso:  Placeholder,
		CuantiaContrato: Placeholder,
		AnnoMin:         Placeholder,
		AnnoMax:         Placeholder,
	}
}

func (s Summary) View() SummaryView {
	return SummaryView{
		Total:           orPlaceholder(s.Total),
		CuantiaProceso:  orPlaceholder(s.TotalCuantiaProceso),
		CuantiaContrato: orPlaceholder(s.TotalCuantiaContrato),
		AnnoMin:         orPlaceholder(s.MinAnnoFirma),
		AnnoMax:         orPlaceholder(s.MaxAnnoFirma),
	}
}

func orPlaceholder(raw json.RawMessage) string {
	if v := DisplayValue(raw); v != "" {
		return v
	}
	return Placeholder
}

// ---------------- Estado de sincronización ----------------

// SyncStatus es la respuesta de /sync/status. Solo los dos primeros campos
// son parte del contrato mínimo; el resto se muestra si llega.
type SyncStatus struct {
	LastRunTS            *string         `json:"last_run_ts,omitempty"`
	LastRunStatus        *string         `json:"last_run_status,omitempty"`
	DatasetID            *string         `json:"dataset_id,omitempty"`
	LastDatasetUpdatedAt *string         `json:"last_dataset_updated_at,omitempty"`
	RowsUpserted         json.RawMessage `json:"rows_upserted,omitempty"`
	LastError            *string         `json:"last_error,omitempty"`
	Status               *string         `json:"status,omitempty"`
}

// SyncStatusView es el estado de sincronización ya en texto.
type SyncStatusView struct {
	LastRun            string `json:"last_run"`
	LastRunStatus      string `json:"last_run_status"`
	DatasetID          string `json:"dataset_id"`
	LastDatasetUpdated string `json:"last_dataset_updated"`
	RowsUpserted       string `json:"rows_upserted"`
	LastError          string `json:"last_error"`
}

func EmptySyncStatusView() SyncStatusView {
	return SyncStatusView{
		LastRun:            Placeholder,
		LastRunStatus:      Placeholder,
		DatasetID:          Placeholder,
		LastDatasetUpdated: Placeholder,
		RowsUpserted:       Placeholder,
		LastError:          Placeholder,
	}
}

func (s SyncStatus) View(loc *time.Location) SyncStatusView {
	v := EmptySyncStatusView()
	if s.LastRunTS != nil && *s.LastRunTS != "" {
		v.LastRun = FormatTimestamp(*s.LastRunTS, loc)
	}
	if s.LastDatasetUpdatedAt != nil && *s.LastDatasetUpdatedAt != "" {
		v.LastDatasetUpdated = FormatTimestamp(*s.LastDatasetUpdatedAt, loc)
	}
	v.LastRunStatus = strOrPlaceholder(s.LastRunStatus)
	v.DatasetID = strOrPlaceholder(s.DatasetID)
	v.LastError = strOrPlaceholder(s.LastError)
	v.RowsUpserted = orPlaceholder(s.RowsUpserted)
	return v
}

func strOrPlaceholder(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return Placeholder
	}
	return *s
}

// Formatos aceptados para marcas de tiempo ISO; los que no traen zona se leen en UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// DisplayTimeLayout es el formato local de presentación (dd/mm/aaaa, hh:mm:ss).
const DisplayTimeLayout = "02/01/2006, 15:04:05"

// FormatTimestamp pasa una marca ISO a hora local; si no se puede leer se devuelve tal cual.
func FormatTimestamp(raw string, loc *time.Location) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Placeholder
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(loc).Format(DisplayTimeLayout)
		}
	}
	return raw
}

// ---------------- Catálogos y sincronización ----------------

// Catalogs son las columnas que admiten búsqueda de valores distintos.
var Catalogs = []string{
	"anno_firma_contrato",
	"modalidad_de_contratacion",
	"destino_gasto",
	"nombre_entidad",
	"departamento_entidad",
	"municipio_entidad",
	"estado_del_proceso",
	"codigo_bpin",
}

const (
	DefaultCatalogLimit = 200
	MaxCatalogLimit     = 2000
)

func IsCatalog(name string) bool {
	for _, c := range Catalogs {
		if c == name {
			return true
		}
	}
	return false
}

// ClampCatalogLimit lleva el límite al rango [1, 2000]; 0 o negativo usa 200.
func ClampCatalogLimit(limit int) int {
	if limit <= 0 {
		return DefaultCatalogLimit
	}
	return min(limit, MaxCatalogLimit)
}

type SyncMode string

const (
	SyncIncremental SyncMode = "incremental"
	SyncSnapshot    SyncMode = "snapshot"
)

// ParseSyncMode acepta "incremental" (por defecto si viene vacío) o "snapshot".
func ParseSyncMode(raw string) (SyncMode, error) {
	switch m := SyncMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return SyncIncremental, nil
	case SyncIncremental, SyncSnapshot:
		return m, nil
	default:
		return "", ErrInvalidSyncMode
	}
}

// SyncRun es la respuesta de POST /sync/run.
type SyncRun struct {
	Mode string `json:"mode"`
	Rows int    `json:"rows"`
}
