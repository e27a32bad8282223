package engine

import (
	"github.com/furxx2000/orderdeck/internal/models"
	"github.com/furxx2000/orderdeck/internal/stats"
)

// reduce is the pure transition function. It never mutates its input;
// maps and slices are copied before editing. All I/O lives in the store's
// effect layer.
func reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetSearch:
		state.Search = a.Search
		state.Page = 1
		return state

	case SetFilter:
		filters := cloneFilters(state.Filters)
		filters[a.Key] = append([]string(nil), a.Values...)
		state.Filters = filters
		state.Page = 1
		return state

	case ResetFilters:
		state.Filters = map[string][]string{}
		state.Search = ""
		state.Page = 1
		return state

	case SetSorting:
		state.Sort = a.Sort
		return state

	case SetPage:
		state.Page = clampPage(a.Page, state.PageCount)
		return state

	case SetPageSize:
		state.PageSize = a.PageSize
		state.Page = 1
		return state

	case SetData:
		state.Orders = a.Orders
		state.TotalCount = a.TotalCount
		state.PageCount = a.PageCount
		state.Stats = a.Stats
		state.IsLoading = false
		// A shrinking result set can strand the page past the end.
		state.Page = clampPage(state.Page, a.PageCount)
		return state

	case UpdateOrder:
		idx := -1

		for i := range state.Orders {
			if state.Orders[i].ID == a.OrderID {
				idx = i
				break
			}
		}

		if idx == -1 {
			return state
		}

		old := state.Orders[idx]
		updated := a.Patch.applyTo(old)

		orders := append([]models.Order(nil), state.Orders...)
		orders[idx] = updated

		state.Orders = orders
		state.Stats = stats.ApplyDelta(state.Stats, old, updated)
		return state

	case ToggleRow:
		selection := cloneSelection(state.RowSelection)
		selection[a.OrderID] = a.Selected
		state.RowSelection = selection
		return state

	case ToggleAllRows:
		selection := cloneSelection(state.RowSelection)

		for _, o := range state.Orders {
			if a.Selected {
				selection[o.ID] = true
			} else {
				// Only visible rows are deselected; selections made on
				// other pages survive.
				delete(selection, o.ID)
			}
		}

		state.RowSelection = selection
		return state

	default:
		return state
	}
}

// clampPage keeps the page inside [1, max(pageCount, 1)]
func clampPage(page, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	if page > pageCount {
		page = pageCount
	}
	if page < 1 {
		page = 1
	}
	return page
}
