package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/davicafu/secopviewer/internal/procesos/domain"
	"github.com/davicafu/secopviewer/internal/shared/infra/metrics"
	"go.uber.org/zap"
)

// ServiceFactory construye el BrowserService de una sesión a partir de su estado.
type ServiceFactory func(sessionID string, state domain.BrowseState) *BrowserService

type sessionEntry struct {
	svc      *BrowserService
	lastSeen time.Time
}

// SessionRegistry mantiene un BrowserService por sesión de navegador. El
// estado de navegación se guarda en el SessionStore; los resultados nunca.
type SessionRegistry struct {
	store   domain.SessionStore
	factory ServiceFactory
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewSessionRegistry(store domain.SessionStore, factory ServiceFactory, ttl time.Duration, m *metrics.Metrics, log *zap.Logger) *SessionRegistry {
	return &SessionRegistry{
		store:    store,
		factory:  factory,
		ttl:      ttl,
		metrics:  m,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Get devuelve el servicio de la sesión. Si no está en memoria se crea a
// partir del estado guardado (o del estado inicial) y se lanzan los ciclos de
// arranque. created indica si hubo que crearlo.
func (r *SessionRegistry) Get(ctx context.Context, sessionID string) (svc *BrowserService, created bool) {
	r.mu.Lock()
	if e, ok := r.sessions[sessionID]; ok {
		e.lastSeen = r.now()
		r.mu.Unlock()
		return e.svc, false
	}
	r.mu.Unlock()

	state := r.restore(ctx, sessionID)
	fresh := r.factory(sessionID, state)

	r.mu.Lock()
	if e, ok := r.sessions[sessionID]; ok {
		// otra petición de la misma sesión llegó antes
		e.lastSeen = r.now()
		r.mu.Unlock()
		return e.svc, false
	}
	r.sessions[sessionID] = &sessionEntry{svc: fresh, lastSeen: r.now()}
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetSessions(n)
	r.log.Info("Session opened", zap.String("session_id", sessionID))

	fresh.Start(ctx)
	return fresh, true
}

func (r *SessionRegistry) restore(ctx context.Context, sessionID string) domain.BrowseState {
	if r.store == nil {
		return domain.InitialState()
	}
	state, err := r.store.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			r.log.Warn("Failed to restore session state", zap.String("session_id", sessionID), zap.Error(err))
		}
		return domain.InitialState()
	}
	return state.Normalize()
}

// Persist guarda el estado de navegación actual de la sesión.
func (r *SessionRegistry) Persist(ctx context.Context, svc *BrowserService) error {
	if r.store == nil || svc == nil {
		return nil
	}
	if err := r.store.Save(ctx, svc.SessionID(), svc.State()); err != nil {
		r.log.Warn("Failed to persist session state", zap.String("session_id", svc.SessionID()), zap.Error(err))
		return err
	}
	return nil
}

// Forget olvida la sesión en memoria y en el store.
func (r *SessionRegistry) Forget(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetSessions(n)
	if r.store == nil {
		return nil
	}
	return r.store.Delete(ctx, sessionID)
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle retira de memoria las sesiones sin actividad durante más del TTL.
// El estado guardado sigue en el store hasta que expire allí.
func (r *SessionRegistry) EvictIdle() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	evicted := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if evicted > 0 {
		r.metrics.SetSessions(n)
		r.log.Debug("Evicted idle sessions", zap.Int("evicted", evicted), zap.Int("active", n))
	}
	return evicted
}

// Run ejecuta el janitor hasta que se cancele el contexto.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Session janitor stopped")
			return
		case <-ticker.C:
			r.EvictIdle()
		}
	}
}
