package domain

import (
	"context"
	"errors"
	"fmt"
)

// ---------- Errores de dominio ----------
var (
	ErrUpstreamUnavailable = errors.New("procesos service unavailable")
	ErrUpstreamStatus      = errors.New("procesos service returned non-success status")
	ErrUpstreamPayload     = errors.New("procesos service returned an unreadable body")
	ErrUnknownChip         = errors.New("unknown chip")
	ErrUnknownExport       = errors.New("unknown export kind")
	ErrUnknownCatalog      = errors.New("unknown catalog")
	ErrInvalidSyncMode     = errors.New("invalid sync mode")
	ErrSessionNotFound     = errors.New("session not found")
)

// ---------- Interfaces (Ports) ----------

// ProcesosGateway es el servicio remoto de datos.
type ProcesosGateway interface {
	// ListProcesos consulta /procesos con la consulta canónica completa.
	ListProcesos(ctx context.Context, q CanonicalQuery) (ResultPage, error)

	// Summary consulta /stats/resumen; la paginación no afecta al agregado.
	Summary(ctx context.Context, q CanonicalQuery) (Summary, error)

	// SyncStatus consulta /sync/status, sin parámetros.
	SyncStatus(ctx context.Context) (SyncStatus, error)

	// RunSync lanza una sincronización remota.
	RunSync(ctx context.Context, mode SyncMode) (SyncRun, error)

	// Catalog devuelve los valores distintos de una columna catalogada.
	Catalog(ctx context.Context, catalog, search string, limit int) ([]string, error)

	// ExportURL construye la URL navegable de exportación.
	ExportURL(kind ExportKind, q CanonicalQuery) string
}

// SessionStore guarda el BrowseState de cada sesión mientras esté viva.
type SessionStore interface {
	// Load devuelve ErrSessionNotFound si no hay estado para la sesión.
	Load(ctx context.Context, sessionID string) (BrowseState, error)
	Save(ctx context.Context, sessionID string, s BrowseState) error
	Delete(ctx context.Context, sessionID string) error
}

// ---------- Helpers comunes ----------

// SessionCacheKey forma una key consistente para el estado de sesión.
func SessionCacheKey(sessionID string) string {
	return fmt.Sprintf("procesos:session:%s", sessionID)
}

// CatalogCacheKey forma la key de una consulta de catálogo.
func CatalogCacheKey(catalog, search string, limit int) string {
	return fmt.Sprintf("procesos:catalogo:%s:%d:%s", catalog, limit, search)
}
