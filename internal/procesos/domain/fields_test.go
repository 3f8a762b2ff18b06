package domain

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadField(t *testing.T) {
	src := MapSource{
		FieldEntidad: "  ACME  ",
		FieldQ:       "\t\n",
	}

	assert.Equal(t, "ACME", ReadField(src, FieldEntidad))
	assert.Equal(t, "", ReadField(src, FieldQ))
	assert.Equal(t, "", ReadField(src, "no-existe"), "un control ausente se lee vacío")
	assert.Equal(t, "", ReadField(nil, FieldEntidad))
}

func TestFormValues_Lookup(t *testing.T) {
	form := FormValues(url.Values{
		FieldAnno:  {"2023", "2024"},
		"vacio": {},
	})

	v, ok := form.Lookup(FieldAnno)
	assert.True(t, ok)
	assert.Equal(t, "2023", v, "se usa el primer valor")

	_, ok = form.Lookup("vacio")
	assert.False(t, ok)

	_, ok = form.Lookup(FieldEstado)
	assert.False(t, ok)
}
