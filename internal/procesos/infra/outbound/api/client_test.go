package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davicafu/secopviewer/internal/procesos/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, 0, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClient_URLInvalida(t *testing.T) {
	_, err := NewClient("no-es-una-url", 0, zap.NewNop())
	assert.Error(t, err)
}

func TestClient_ListProcesos(t *testing.T) {
	var gotURI string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total":3,"limit":25,"offset":0,"items":[
			{"uid":"1","nombre_entidad":"ACME","cuantia_proceso":1500000.0,"foo":"x"},
			{"uid":"2","nombre_entidad":null}
		]}`))
	})

	q := domain.BuildQuery(domain.NewFilterSet(map[domain.FilterKey]string{domain.KeyEntidad: "ACME"}), domain.DefaultCursor())
	page, err := c.ListProcesos(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "/procesos?entidad=ACME&limit=25&offset=0", gotURI)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)

	v, ok := page.Items[0].Value(domain.ColCuantiaProceso)
	assert.True(t, ok)
	assert.Equal(t, "1500000", v)
	assert.Equal(t, []string{"foo"}, page.Items[0].Ignored())

	v, ok = page.Items[1].Value(domain.ColNombreEntidad)
	assert.True(t, ok, "null cuenta como columna presente")
	assert.Equal(t, "", v)
}

func TestClient_ListProcesos_SinItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":0}`))
	})

	page, err := c.ListProcesos(context.Background(), domain.BuildQuery(domain.NewFilterSet(nil), domain.DefaultCursor()))
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestClient_ListProcesos_TotalNoEntero(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTotal int
		wantLabel string
	}{
		{"decimal", `{"total":3.0,"items":[null,{"uid":2}]}`, 3, "3"},
		{"texto", `{"total":"3","items":[{"uid":1}]}`, 3, "3"},
		{"ilegible", `{"total":{},"items":[{"uid":1}]}`, 0, domain.Placeholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			page, err := c.ListProcesos(context.Background(), domain.BuildQuery(domain.NewFilterSet(nil), domain.DefaultCursor()))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.Equal(t, tt.wantLabel, page.TotalLabel())
			assert.NotEmpty(t, page.Items)
		})
	}
}

func TestClient_Errores(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "estado no exitoso",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
			},
			want: domain.ErrUpstreamStatus,
		},
		{
			name: "4xx tambien es fallo",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			want: domain.ErrUpstreamStatus,
		},
		{
			name: "cuerpo ilegible",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			want: domain.ErrUpstreamPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.ListProcesos(context.Background(), domain.BuildQuery(domain.NewFilterSet(nil), domain.DefaultCursor()))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_ServidorCaido(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(base, 0, zap.NewNop())
	require.NoError(t, err)

	_, err = c.SyncStatus(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_Summary(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"total":57,"total_cuantia_proceso":1234.5,"min_anno_firma_contrato":2019,"max_anno_firma_contrato":null}`))
	})

	s, err := c.Summary(context.Background(), domain.BuildQuery(domain.NewFilterSet(nil), domain.DefaultCursor()))
	require.NoError(t, err)
	assert.Equal(t, "/stats/resumen", gotPath)

	view := s.View()
	assert.Equal(t, "57", view.Total)
	assert.Equal(t, "1234.5", view.CuantiaProceso)
	assert.Equal(t, domain.Placeholder, view.CuantiaContrato)
	assert.Equal(t, "2019", view.AnnoMin)
	assert.Equal(t, domain.Placeholder, view.AnnoMax)
}

func TestClient_SyncStatusSinParametros(t *testing.T) {
	var gotURI string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		_, _ = w.Write([]byte(`{"last_run_ts":"2024-05-01T15:00:00Z","last_run_status":"OK","rows_upserted":12}`))
	})

	s, err := c.SyncStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/sync/status", gotURI)
	require.NotNil(t, s.LastRunStatus)
	assert.Equal(t, "OK", *s.LastRunStatus)
}

func TestClient_RunSync(t *testing.T) {
	var gotMethod, gotURI string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotURI = r.Method, r.URL.RequestURI()
		_, _ = w.Write([]byte(`{"mode":"snapshot","rows":120}`))
	})

	run, err := c.RunSync(context.Background(), domain.SyncSnapshot)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/sync/run?mode=snapshot", gotURI)
	assert.Equal(t, 120, run.Rows)
}

func TestClient_Catalog(t *testing.T) {
	var gotURI string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		_, _ = w.Write([]byte(`{"catalogo":"anno_firma_contrato","items":[2019,2020,null,"2021"]}`))
	})

	values, err := c.Catalog(context.Background(), "anno_firma_contrato", "20", 5000)
	require.NoError(t, err)
	assert.Equal(t, "/catalogos/anno_firma_contrato?q=20&limit=2000", gotURI)
	assert.Equal(t, []string{"2019", "2020", "2021"}, values)
}

func TestClient_Catalog_Desconocido(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.Catalog(context.Background(), "password", "", 0)
	assert.ErrorIs(t, err, domain.ErrUnknownCatalog)
	assert.False(t, called, "no debe llamar al servicio remoto")
}

func TestClient_ExportURL(t *testing.T) {
	c, err := NewClient("http://datos.local:8000/api/", 0, zap.NewNop())
	require.NoError(t, err)

	state := domain.InitialState().ApplyFields(domain.MapSource{
		domain.FieldEntidad:   "ACME",
		domain.FieldCols:      "uid,nombre_entidad",
		domain.FieldXlsxLimit: "",
	})

	assert.Equal(t,
		"http://datos.local:8000/api/export/xlsx?entidad=ACME&limit=5000&offset=0&cols=uid%2Cnombre_entidad",
		c.ExportURL(domain.ExportXLSX, state.ExportQuery(domain.ExportXLSX)),
	)
	assert.Equal(t,
		"http://datos.local:8000/api/export/csv?entidad=ACME&limit=25&offset=0&cols=uid%2Cnombre_entidad",
		c.ExportURL(domain.ExportCSV, state.ExportQuery(domain.ExportCSV)),
	)
}
