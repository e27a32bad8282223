// Package engine owns the canonical dashboard state: the loaded orders,
// the composite query parameters, the row selection and the derived
// aggregates. All mutation goes through Dispatch with a tagged action;
// the transition function itself is pure, and every re-query triggered by
// a query-affecting action is guarded by a generation counter so a
// superseded request can never overwrite newer data.
package engine

import (
	"github.com/furxx2000/orderdeck/internal/models"
	"github.com/furxx2000/orderdeck/internal/query"
)

// State holds everything the order table renders from
type State struct {
	Orders       []models.Order
	IsLoading    bool
	Page         int // 1-based
	PageSize     int
	Sort         *query.Sort
	TotalCount   int
	PageCount    int
	Stats        models.OrderStats
	Search       string
	Filters      map[string][]string
	RowSelection map[string]bool
}

// DefaultPageSize matches the dashboard's initial page size
const DefaultPageSize = 5

func initialState(pageSize int) State {
	return State{
		Orders:       []models.Order{},
		IsLoading:    true,
		Page:         1,
		PageSize:     pageSize,
		Filters:      map[string][]string{},
		RowSelection: map[string]bool{},
	}
}

// IsFiltered reports whether any search text or facet filter is active
func (s State) IsFiltered() bool {
	if s.Search != "" {
		return true
	}

	for _, values := range s.Filters {
		if len(values) > 0 {
			return true
		}
	}

	return false
}

func cloneFilters(filters map[string][]string) map[string][]string {
	out := make(map[string][]string, len(filters))
	for k, v := range filters {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func cloneSelection(selection map[string]bool) map[string]bool {
	out := make(map[string]bool, len(selection))
	for k, v := range selection {
		out[k] = v
	}
	return out
}

// clone returns a copy safe to hand to subscribers
func (s State) clone() State {
	c := s
	c.Orders = append([]models.Order(nil), s.Orders...)
	c.Filters = cloneFilters(s.Filters)
	c.RowSelection = cloneSelection(s.RowSelection)

	if s.Sort != nil {
		sort := *s.Sort
		c.Sort = &sort
	}

	return c
}
