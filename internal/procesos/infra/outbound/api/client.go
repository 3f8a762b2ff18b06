package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/davicafu/secopviewer/internal/procesos/domain"
	"go.uber.org/zap"
)

// Rutas del servicio remoto.
const (
	pathProcesos  = "/procesos"
	pathResumen   = "/stats/resumen"
	pathSync      = "/sync/status"
	pathSyncRun   = "/sync/run"
	pathCatalogos = "/catalogos/"
	pathExport    = "/export/"
)

// Client es el adaptador HTTP hacia el servicio remoto de procesos.
// Un timeout cero deja las llamadas sin límite propio; manda el contexto.
type Client struct {
	BaseURL *url.URL
	HTTP    *http.Client
	log     *zap.Logger
}

var _ domain.ProcesosGateway = (*Client)(nil)

// NewClient construye el cliente a partir de la URL base del servicio.
func NewClient(base string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse procesos api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse procesos api url: %q is not absolute", base)
	}
	return &Client{
		BaseURL: u,
		HTTP:    &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

func (c *Client) ListProcesos(ctx context.Context, q domain.CanonicalQuery) (domain.ResultPage, error) {
	var page domain.ResultPage
	if err := c.getJSON(ctx, pathProcesos, q.Encode(), &page); err != nil {
		return domain.ResultPage{}, err
	}
	if page.Items == nil {
		page.Items = []domain.Record{}
	}
	return page, nil
}

func (c *Client) Summary(ctx context.Context, q domain.CanonicalQuery) (domain.Summary, error) {
	var s domain.Summary
	if err := c.getJSON(ctx, pathResumen, q.Encode(), &s); err != nil {
		return domain.Summary{}, err
	}
	return s, nil
}

func (c *Client) SyncStatus(ctx context.Context) (domain.SyncStatus, error) {
	var s domain.SyncStatus
	if err := c.getJSON(ctx, pathSync, "", &s); err != nil {
		return domain.SyncStatus{}, err
	}
	return s, nil
}

func (c *Client) RunSync(ctx context.Context, mode domain.SyncMode) (domain.SyncRun, error) {
	var run domain.SyncRun
	query := url.Values{"mode": []string{string(mode)}}.Encode()
	if err := c.doJSON(ctx, http.MethodPost, pathSyncRun, query, &run); err != nil {
		return domain.SyncRun{}, err
	}
	return run, nil
}

// Catalog consulta /catalogos/{catalogo}; el nombre se valida antes de llamar.
func (c *Client) Catalog(ctx context.Context, catalog, search string, limit int) ([]string, error) {
	if !domain.IsCatalog(catalog) {
		return nil, domain.ErrUnknownCatalog
	}
	params := domain.CanonicalQuery{}.
		Set("q", search).
		Set("limit", strconv.Itoa(domain.ClampCatalogLimit(limit)))

	var resp struct {
		Catalogo string            `json:"catalogo"`
		Items    []json.RawMessage `json:"items"`
	}
	if err := c.getJSON(ctx, pathCatalogos+catalog, params.Encode(), &resp); err != nil {
		return nil, err
	}

	values := make([]string, 0, len(resp.Items))
	for _, raw := range resp.Items {
		if v := domain.DisplayValue(raw); v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}

// ExportURL devuelve la URL navegable de /export/csv o /export/xlsx.
func (c *Client) ExportURL(kind domain.ExportKind, q domain.CanonicalQuery) string {
	u := c.endpoint(pathExport + string(kind))
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) endpoint(path string) *url.URL {
	return c.BaseURL.JoinPath(path)
}

func (c *Client) getJSON(ctx context.Context, path, rawQuery string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, rawQuery, out)
}

// doJSON clasifica los fallos en ErrUpstreamUnavailable (transporte),
// ErrUpstreamStatus (no 2xx, cuerpo sin leer) y ErrUpstreamPayload (JSON ilegible).
func (c *Client) doJSON(ctx context.Context, method, path, rawQuery string, out any) error {
	u := c.endpoint(path)
	u.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstreamUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("procesos api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("query", rawQuery),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return fmt.Errorf("%w: %s %s: %d", domain.ErrUpstreamStatus, method, path, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstreamPayload, method, path, err)
	}
	return nil
}
