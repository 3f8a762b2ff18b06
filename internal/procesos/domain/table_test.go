package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeItems(t *testing.T, raw string) []Record {
	t.Helper()
	var items []Record
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	return items
}

func TestRenderTable_ColumnasDeLaPrimeraFila(t *testing.T) {
	items := decodeItems(t, `[{"uid":"1","foo":"x","nombre_entidad":"ACME"}]`)

	table := RenderTable(items)
	assert.Equal(t, []string{"uid", "nombre_entidad"}, table.Header)
	assert.Equal(t, [][]string{{"1", "ACME"}}, table.Rows)
	assert.Equal(t, []string{"foo"}, items[0].Ignored())
}

func TestRenderTable_SinFilas(t *testing.T) {
	table := RenderTable(nil)

	want := make([]string, 0, len(DisplayColumns))
	for _, c := range DisplayColumns {
		want = append(want, string(c))
	}
	assert.Equal(t, want, table.Header)
	assert.Len(t, table.Header, 7)
	assert.Empty(t, table.Rows)
}

func TestRenderTable_CeldaFaltante(t *testing.T) {
	items := decodeItems(t, `[
		{"uid":"1","estado_del_proceso":"Convocado","cuantia_proceso":10},
		{"uid":"2","cuantia_proceso":null},
		{"estado_del_proceso":"Celebrado","anno_firma_contrato":2024}
	]`)

	table := RenderTable(items)
	assert.Equal(t, []string{"uid", "estado_del_proceso", "cuantia_proceso"}, table.Header)
	assert.Equal(t, [][]string{
		{"1", "Convocado", "10"},
		{"2", "", ""},
		{"", "Celebrado", ""},
	}, table.Rows)
}

func TestRenderTable_OrdenDeColumnas(t *testing.T) {
	items := []Record{NewRecord(map[Column]string{
		ColDatasetUpdatedAt: "2024-01-01",
		ColUID:              "u",
		Column("extra"):     "no",
	})}

	assert.Equal(t, []string{"uid", "dataset_updated_at"}, RenderTable(items).Header)
}

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`null`, ""},
		{``, ""},
		{`"texto"`, "texto"},
		{`"con \"comillas\""`, `con "comillas"`},
		{`true`, "true"},
		{`false`, "false"},
		{`42`, "42"},
		{`1500000.0`, "1500000"},
		{`12.50`, "12.5"},
		{`-0.25`, "-0.25"},
		{`1e3`, "1000"},
		{`{ "a" : 1 }`, `{"a":1}`},
		{`[1, 2]`, `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayValue(json.RawMessage(tt.raw)))
		})
	}
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := NewRecord(map[Column]string{ColUID: "1", ColNombreEntidad: ""})

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uid":"1","nombre_entidad":""}`, string(data))
}
