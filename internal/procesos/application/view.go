package application

import (
	"time"

	"github.com/davicafu/secopviewer/internal/procesos/domain"
)

// CycleStatus es el indicador de estado de un ciclo de consulta.
type CycleStatus string

const (
	StatusIdle    CycleStatus = ""
	StatusLoading CycleStatus = "cargando"
	StatusReady   CycleStatus = "listo"
	StatusError   CycleStatus = "error"
)

// Mensajes de alerta, uno por ciclo.
const (
	AlertList    = "No se pudo cargar /procesos. Revisa el servidor."
	AlertSummary = "No se pudo cargar el resumen."
	AlertStatus  = "No se pudo cargar el estado de sync."
	AlertSyncRun = "No se pudo ejecutar la sincronización."
)

// Slot es la región propia de un ciclo: su estado y su alerta.
// El éxito de un ciclo solo limpia su propia alerta.
type Slot struct {
	Status    CycleStatus `json:"status"`
	Alert     string      `json:"alert,omitempty"`
	UpdatedAt time.Time   `json:"updated_at,omitempty"`
}

// ListView es el resultado visible del último ciclo de listado exitoso.
type ListView struct {
	Slot
	Total      int               `json:"total"`
	TotalLabel string            `json:"total_label"`
	Pager      domain.Pager      `json:"pager"`
	Table      domain.TableModel `json:"table"`
	Loaded     bool              `json:"loaded"`
}

type SummaryPanel struct {
	Slot
	Values domain.SummaryView `json:"values"`
}

type StatusPanel struct {
	Slot
	Values  domain.SyncStatusView `json:"values"`
	LastRun *domain.SyncRun       `json:"last_run,omitempty"`
}

type ChipView struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// View es la foto completa que pinta la capa de presentación.
type View struct {
	SessionID string             `json:"session_id,omitempty"`
	State     domain.BrowseState `json:"state"`
	Query     string             `json:"query"`
	List      ListView           `json:"list"`
	Summary   SummaryPanel       `json:"summary"`
	Sync      StatusPanel        `json:"sync"`
	Chips     []ChipView         `json:"chips"`
	Exports   map[string]string  `json:"exports"`
}

func initialView() View {
	return View{
		List: ListView{
			TotalLabel: domain.Placeholder,
			Pager:      domain.DerivePager(0, domain.DefaultLimit, domain.DefaultOffset),
			Table:      domain.RenderTable(nil),
		},
		Summary: SummaryPanel{Values: domain.EmptySummaryView()},
		Sync:    StatusPanel{Values: domain.EmptySyncStatusView()},
	}
}

func chipViews(active string) []ChipView {
	out := make([]ChipView, 0, len(domain.Chips))
	for _, c := range domain.Chips {
		out = append(out, ChipView{ID: c.ID, Label: c.Label, Active: c.ID == active})
	}
	return out
}
