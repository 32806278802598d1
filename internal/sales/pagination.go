package sales

import (
	"strconv"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PageRequest representa os parâmetros de paginação das listagens
type PageRequest struct {
	Page  int
	Limit int
}

// ParsePageRequest interpreta os query params page/limit (vazios usam os valores padrão)
func ParsePageRequest(page, limit string) (PageRequest, error) {
	req := PageRequest{Page: 1, Limit: DefaultPageLimit}

	if page != "" {
		p, err := strconv.Atoi(page)
		if err != nil || p < 1 {
			return req, Validation("page must be a positive integer", map[string]any{"page": page})
		}
		req.Page = p
	}
	if limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil || l < 1 || l > MaxPageLimit {
			return req, Validation("limit must be between 1 and 100", map[string]any{"limit": limit})
		}
		req.Limit = l
	}
	return req, nil
}

func (p PageRequest) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// Page é a resposta paginada
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return Page[T]{
		Items:      items,
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: pages,
	}
}
