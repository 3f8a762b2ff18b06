package application

import (
	"context"
	"sync"
	"time"

	"github.com/davicafu/secopviewer/internal/procesos/domain"
	sharedDomain "github.com/davicafu/secopviewer/internal/shared/domain"
	"github.com/davicafu/secopviewer/internal/shared/infra/metrics"
	sharedUtils "github.com/davicafu/secopviewer/internal/shared/infra/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Nombres de ciclo usados en logs y métricas.
const (
	cycleList    = "list"
	cycleSummary = "summary"
	cycleStatus  = "status"
	cycleSync    = "sync"
)

// BrowserService orquesta los ciclos de listado, resumen y estado de sync
// de una sesión. Cada ciclo emite un token creciente; una respuesta cuyo
// token ya no es el último de su ciclo se descarta.
type BrowserService struct {
	gw      domain.ProcesosGateway
	audit   sharedDomain.OutboxWriter
	metrics *metrics.Metrics
	log     *zap.Logger
	loc     *time.Location
	now     func() time.Time

	sessionID string

	mu         sync.Mutex
	state      domain.BrowseState
	view       View
	listSeq    uint64
	summarySeq uint64
	statusSeq  uint64
}

// Option configura un BrowserService.
type Option func(*BrowserService)

func WithLocation(loc *time.Location) Option {
	return func(s *BrowserService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *BrowserService) { s.metrics = m }
}

// WithAudit activa el registro de exportaciones en la outbox.
func WithAudit(w sharedDomain.OutboxWriter) Option {
	return func(s *BrowserService) { s.audit = w }
}

func WithSessionID(id string) Option {
	return func(s *BrowserService) { s.sessionID = id }
}

// WithState arranca desde un estado restaurado.
func WithState(st domain.BrowseState) Option {
	return func(s *BrowserService) { s.state = st.Normalize() }
}

func WithClock(now func() time.Time) Option {
	return func(s *BrowserService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewBrowserService es el constructor del controlador de vista.
func NewBrowserService(gw domain.ProcesosGateway, log *zap.Logger, opts ...Option) *BrowserService {
	s := &BrowserService{
		gw:    gw,
		log:   log,
		loc:   time.Local,
		now:   time.Now,
		state: domain.InitialState(),
		view:  initialView(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("session_id", s.sessionID))
	return s
}

func (s *BrowserService) SessionID() string {
	return s.sessionID
}

func (s *BrowserService) State() domain.BrowseState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View devuelve una copia de la vista actual.
func (s *BrowserService) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *BrowserService) snapshot() View {
	v := s.view
	v.SessionID = s.sessionID
	v.State = s.state
	v.Query = s.state.Query().Encode()
	v.Chips = chipViews(s.state.ActiveChip)
	v.Exports = map[string]string{
		string(domain.ExportCSV):  s.gw.ExportURL(domain.ExportCSV, s.state.ExportQuery(domain.ExportCSV)),
		string(domain.ExportXLSX): s.gw.ExportURL(domain.ExportXLSX, s.state.ExportQuery(domain.ExportXLSX)),
	}
	if v.Sync.LastRun != nil {
		run := *v.Sync.LastRun
		v.Sync.LastRun = &run
	}
	return v
}

// Start lanza los ciclos de arranque: listado y estado de sync a la vez.
// El resumen no se pide hasta que el usuario lo solicite.
func (s *BrowserService) Start(ctx context.Context) View {
	var g errgroup.Group
	g.Go(func() error {
		s.RefreshList(ctx)
		return nil
	})
	g.Go(func() error {
		s.RefreshStatus(ctx)
		return nil
	})
	_ = g.Wait()
	return s.View()
}

// ---------------- Acciones ----------------

// Search toma los controles del formulario como nuevo estado y lista.
func (s *BrowserService) Search(ctx context.Context, src domain.FieldSource) View {
	s.mu.Lock()
	s.state = s.state.ApplyFields(src)
	s.mu.Unlock()
	return s.RefreshList(ctx)
}

func (s *BrowserService) NextPage(ctx context.Context) View {
	s.mu.Lock()
	s.state = s.state.NextPage()
	s.mu.Unlock()
	return s.RefreshList(ctx)
}

func (s *BrowserService) PrevPage(ctx context.Context) View {
	s.mu.Lock()
	s.state = s.state.PrevPage()
	s.mu.Unlock()
	return s.RefreshList(ctx)
}

// ClearFilters vacía los filtros sin consultar; quien llama decide si re-lista.
func (s *BrowserService) ClearFilters() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.Reset()
	return s.snapshot()
}

// SelectChip activa un filtro predefinido y refresca el listado.
func (s *BrowserService) SelectChip(ctx context.Context, chipID string) (View, error) {
	chip, err := domain.FindChip(chipID)
	if err != nil {
		return s.View(), err
	}
	s.mu.Lock()
	s.state = s.state.SelectChip(chip)
	s.mu.Unlock()
	return s.RefreshList(ctx), nil
}

// ---------------- Ciclos ----------------

// RefreshList ejecuta un ciclo de listado con el estado actual. Si falla, la
// tabla y el paginador anteriores quedan intactos.
func (s *BrowserService) RefreshList(ctx context.Context) View {
	s.mu.Lock()
	s.listSeq++
	token := s.listSeq
	q := s.state.Query()
	cursor := s.state.Cursor
	s.view.List.Status = StatusLoading
	s.mu.Unlock()

	start := s.now()
	page, err := s.gw.ListProcesos(ctx, q)
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.listSeq {
		s.discard(cycleList, token, s.listSeq, elapsed)
		return s.snapshot()
	}

	slot := &s.view.List
	slot.UpdatedAt = s.now()
	if err != nil {
		slot.Status = StatusError
		slot.Alert = AlertList
		s.log.Warn("List cycle failed", zap.String("query", q.Encode()), zap.Error(err))
		s.metrics.RecordCycle(cycleList, metrics.OutcomeError, elapsed)
		return s.snapshot()
	}

	slot.Total = page.Total
	slot.TotalLabel = page.TotalLabel()
	slot.Pager = domain.DerivePager(page.Total, cursor.Limit, cursor.Offset)
	slot.Table = domain.RenderTable(page.Items)
	slot.Loaded = true
	slot.Alert = ""
	slot.Status = StatusReady

	s.logIgnored(page.Items)
	s.log.Debug("List cycle done",
		zap.String("query", q.Encode()),
		zap.String("total", page.TotalLabel()),
		zap.String("page", slot.Pager.Short()),
	)
	s.metrics.RecordCycle(cycleList, metrics.OutcomeOK, elapsed)
	return s.snapshot()
}

// RefreshSummary pide el agregado para los filtros actuales.
func (s *BrowserService) RefreshSummary(ctx context.Context) View {
	s.mu.Lock()
	s.summarySeq++
	token := s.summarySeq
	q := s.state.Query()
	s.view.Summary.Status = StatusLoading
	s.mu.Unlock()

	start := s.now()
	summary, err := s.gw.Summary(ctx, q)
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.summarySeq {
		s.discard(cycleSummary, token, s.summarySeq, elapsed)
		return s.snapshot()
	}

	slot := &s.view.Summary
	slot.UpdatedAt = s.now()
	if err != nil {
		slot.Status = StatusError
		slot.Alert = AlertSummary
		s.log.Warn("Summary cycle failed", zap.String("query", q.Encode()), zap.Error(err))
		s.metrics.RecordCycle(cycleSummary, metrics.OutcomeError, elapsed)
		return s.snapshot()
	}

	slot.Values = summary.View()
	slot.Alert = ""
	slot.Status = StatusReady
	s.metrics.RecordCycle(cycleSummary, metrics.OutcomeOK, elapsed)
	return s.snapshot()
}

// RefreshStatus consulta el estado de la última sincronización.
func (s *BrowserService) RefreshStatus(ctx context.Context) View {
	s.mu.Lock()
	s.statusSeq++
	token := s.statusSeq
	s.view.Sync.Status = StatusLoading
	s.mu.Unlock()

	start := s.now()
	status, err := s.gw.SyncStatus(ctx)
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.statusSeq {
		s.discard(cycleStatus, token, s.statusSeq, elapsed)
		return s.snapshot()
	}

	slot := &s.view.Sync
	slot.UpdatedAt = s.now()
	if err != nil {
		slot.Status = StatusError
		slot.Alert = AlertStatus
		s.log.Warn("Status cycle failed", zap.Error(err))
		s.metrics.RecordCycle(cycleStatus, metrics.OutcomeError, elapsed)
		return s.snapshot()
	}

	slot.Values = status.View(s.loc)
	slot.Alert = ""
	slot.Status = StatusReady
	s.metrics.RecordCycle(cycleStatus, metrics.OutcomeOK, elapsed)
	return s.snapshot()
}

// TriggerSync lanza una sincronización remota y después refresca el estado.
// Solo devuelve error si el modo no es válido; un fallo remoto queda en la
// alerta del panel de sync.
func (s *BrowserService) TriggerSync(ctx context.Context, rawMode string) (View, error) {
	mode, err := domain.ParseSyncMode(rawMode)
	if err != nil {
		return s.View(), err
	}

	start := s.now()
	run, err := s.gw.RunSync(ctx, mode)
	elapsed := s.now().Sub(start)

	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		// invalida cualquier ciclo de estado en curso para que no limpie la alerta
		s.statusSeq++
		s.view.Sync.Status = StatusError
		s.view.Sync.Alert = AlertSyncRun
		s.view.Sync.UpdatedAt = s.now()
		s.log.Warn("Sync run failed", zap.String("mode", string(mode)), zap.Error(err))
		s.metrics.RecordCycle(cycleSync, metrics.OutcomeError, elapsed)
		return s.snapshot(), nil
	}

	s.mu.Lock()
	s.view.Sync.LastRun = &run
	s.mu.Unlock()

	s.log.Info("Sync run done", zap.String("mode", run.Mode), zap.Int("rows", run.Rows))
	s.metrics.RecordCycle(cycleSync, metrics.OutcomeOK, elapsed)
	return s.RefreshStatus(ctx), nil
}

// ---------------- Exportación y catálogos ----------------

// Export devuelve la URL de descarga para el estado actual y deja constancia
// en la outbox. Un fallo al auditar no impide la exportación.
func (s *BrowserService) Export(ctx context.Context, rawKind string) (string, error) {
	kind, err := domain.ParseExportKind(rawKind)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	q := s.state.ExportQuery(kind)
	s.mu.Unlock()

	target := s.gw.ExportURL(kind, q)
	s.metrics.RecordExport(string(kind))
	s.recordExport(ctx, kind, q, target)
	return target, nil
}

func (s *BrowserService) recordExport(ctx context.Context, kind domain.ExportKind, q domain.CanonicalQuery, target string) {
	if s.audit == nil {
		return
	}

	now := s.now().UTC()
	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "session",
		AggregateID:   sharedUtils.FirstNonZero(s.sessionID, "anonymous"),
		EventType:     domain.ExportRequested,
		Payload: domain.ExportRequestedEvent{
			SessionID:   s.sessionID,
			Kind:        kind,
			Query:       q.Encode(),
			URL:         target,
			RequestedAt: now,
		},
		CreatedAt: now,
	}

	if err := s.audit.SaveOutbox(ctx, evt); err != nil {
		s.log.Warn("Failed to record export", zap.String("kind", string(kind)), zap.Error(err))
	}
}

// Catalog busca valores distintos de una columna para sugerir filtros.
func (s *BrowserService) Catalog(ctx context.Context, catalog, search string, limit int) ([]string, error) {
	if !domain.IsCatalog(catalog) {
		return nil, domain.ErrUnknownCatalog
	}
	values, err := s.gw.Catalog(ctx, catalog, search, limit)
	if err != nil {
		s.log.Warn("Catalog lookup failed", zap.String("catalog", catalog), zap.Error(err))
		return nil, err
	}
	return values, nil
}

// ---------------- Helpers ----------------

// discard se llama con el mutex tomado.
func (s *BrowserService) discard(cycle string, token, latest uint64, elapsed time.Duration) {
	s.log.Debug("Discarding stale response",
		zap.String("cycle", cycle),
		zap.Uint64("token", token),
		zap.Uint64("latest", latest),
	)
	s.metrics.RecordCycle(cycle, metrics.OutcomeStale, elapsed)
}

func (s *BrowserService) logIgnored(items []domain.Record) {
	if len(items) == 0 {
		return
	}
	if ignored := items[0].Ignored(); len(ignored) > 0 {
		s.log.Debug("Fields outside the column list", zap.Strings("fields", ignored))
	}
}
