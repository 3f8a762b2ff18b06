package domain

import "fmt"

// Pager es la vista de paginación derivada de (total, limit, offset).
type Pager struct {
	Page      int  `json:"page"`
	Pages     int  `json:"pages"`
	CanGoPrev bool `json:"can_go_prev"`
	CanGoNext bool `json:"can_go_next"`
}

// DerivePager calcula página (base 1), número de páginas (nunca cero) y la
// habilitación de anterior/siguiente. Un limit no positivo se trata como 25.
func DerivePager(total, limit, offset int) Pager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	if total < 0 {
		total = 0
	}

	page := offset/limit + 1
	pages := max(1, (total+limit-1)/limit)

	return Pager{
		Page:      page,
		Pages:     pages,
		CanGoPrev: offset > 0,
		CanGoNext: page < pages,
	}
}

// Label es el texto del paginador ("Pagina 1 de 3").
func (p Pager) Label() string {
	return fmt.Sprintf("Pagina %d de %d", p.Page, p.Pages)
}

// Short es la forma compacta "1 / 3".
func (p Pager) Short() string {
	return fmt.Sprintf("%d / %d", p.Page, p.Pages)
}
