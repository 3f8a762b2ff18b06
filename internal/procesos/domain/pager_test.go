package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePager(t *testing.T) {
	tests := []struct {
		name                 string
		total, limit, offset int
		want                 Pager
	}{
		{"sin resultados", 0, 25, 0, Pager{Page: 1, Pages: 1, CanGoPrev: false, CanGoNext: false}},
		{"segunda página", 57, 25, 25, Pager{Page: 2, Pages: 3, CanGoPrev: true, CanGoNext: true}},
		{"última página", 57, 25, 50, Pager{Page: 3, Pages: 3, CanGoPrev: true, CanGoNext: false}},
		{"exacto", 50, 25, 0, Pager{Page: 1, Pages: 2, CanGoPrev: false, CanGoNext: true}},
		{"offset fuera de rango", 10, 25, 100, Pager{Page: 5, Pages: 1, CanGoPrev: true, CanGoNext: false}},
		{"limit inválido", 57, 0, 0, Pager{Page: 1, Pages: 3, CanGoPrev: false, CanGoNext: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePager(tt.total, tt.limit, tt.offset))
		})
	}
}

func TestPager_Labels(t *testing.T) {
	p := DerivePager(57, 25, 25)
	assert.Equal(t, "Pagina 2 de 3", p.Label())
	assert.Equal(t, "2 / 3", p.Short())
}
