package mocks

import (
	"context"
	"sync"

	"github.com/davicafu/secopviewer/internal/procesos/domain"
)

// FakeGateway simula el servicio remoto de procesos y registra cada llamada.
// Los campos *Fn, si existen, tienen prioridad sobre las respuestas fijas.
type FakeGateway struct {
	Page       domain.ResultPage
	ListErr    error
	ListFn     func(ctx context.Context, q domain.CanonicalQuery) (domain.ResultPage, error)
	Stats      domain.Summary
	SummaryErr error
	Status     domain.SyncStatus
	StatusErr  error
	StatusFn   func(ctx context.Context) (domain.SyncStatus, error)
	Run        domain.SyncRun
	RunErr     error
	Values     []string
	CatalogErr error
	BaseURL    string

	mu             sync.Mutex
	listQueries    []string
	summaryQueries []string
	statusCalls    int
	syncModes      []domain.SyncMode
	catalogCalls   []string
}

var _ domain.ProcesosGateway = (*FakeGateway)(nil)

func (g *FakeGateway) ListProcesos(ctx context.Context, q domain.CanonicalQuery) (domain.ResultPage, error) {
	g.mu.Lock()
	g.listQueries = append(g.listQueries, q.Encode())
	fn, page, err := g.ListFn, g.Page, g.ListErr
	g.mu.Unlock()

	if fn != nil {
		return fn(ctx, q)
	}
	return page, err
}

func (g *FakeGateway) Summary(ctx context.Context, q domain.CanonicalQuery) (domain.Summary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.summaryQueries = append(g.summaryQueries, q.Encode())
	return g.Stats, g.SummaryErr
}

func (g *FakeGateway) SyncStatus(ctx context.Context) (domain.SyncStatus, error) {
	g.mu.Lock()
	g.statusCalls++
	fn, status, err := g.StatusFn, g.Status, g.StatusErr
	g.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return status, err
}

func (g *FakeGateway) RunSync(ctx context.Context, mode domain.SyncMode) (domain.SyncRun, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.syncModes = append(g.syncModes, mode)
	return g.Run, g.RunErr
}

func (g *FakeGateway) Catalog(ctx context.Context, catalog, search string, limit int) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.catalogCalls = append(g.catalogCalls, catalog)
	return g.Values, g.CatalogErr
}

func (g *FakeGateway) ExportURL(kind domain.ExportKind, q domain.CanonicalQuery) string {
	return g.BaseURL + "/export/" + string(kind) + "?" + q.Encode()
}

// SetList cambia la respuesta de /procesos de forma segura entre goroutines.
func (g *FakeGateway) SetList(page domain.ResultPage, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Page, g.ListErr = page, err
}

func (g *FakeGateway) ListQueries() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.listQueries...)
}

func (g *FakeGateway) SummaryQueries() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.summaryQueries...)
}

func (g *FakeGateway) StatusCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusCalls
}

func (g *FakeGateway) SyncModes() []domain.SyncMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.SyncMode(nil), g.syncModes...)
}

func (g *FakeGateway) CatalogCalls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.catalogCalls...)
}
