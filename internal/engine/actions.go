package engine

import (
	"github.com/furxx2000/orderdeck/internal/models"
	"github.com/furxx2000/orderdeck/internal/query"
)

// Action is a tagged state transition request
type Action interface {
	isAction()
}

// SetSearch replaces the search text and resets to the first page. The
// resulting re-query is debounced.
type SetSearch struct {
	Search string
}

// SetFilter replaces the accepted-value set for one filter column and
// resets to the first page
type SetFilter struct {
	Key    string
	Values []string
}

// ResetFilters clears every filter and the search text
type ResetFilters struct{}

// SetSorting replaces the active sort; nil clears it
type SetSorting struct {
	Sort *query.Sort
}

// SetPage moves to the given 1-based page
type SetPage struct {
	Page int
}

// SetPageSize changes the page size and resets to the first page
type SetPageSize struct {
	PageSize int
}

// SetData atomically replaces the loaded rows, pagination figures and
// stats with a query result
type SetData struct {
	Orders     []models.Order
	TotalCount int
	PageCount  int
	Stats      models.OrderStats
}

// UpdateOrder patches a single loaded order by id; stats are adjusted
// incrementally. Unknown ids are a no-op.
type UpdateOrder struct {
	OrderID string
	Patch   OrderPatch
}

// ToggleRow sets the selection flag for one order id
type ToggleRow struct {
	OrderID  string
	Selected bool
}

// ToggleAllRows selects or deselects every currently visible order
type ToggleAllRows struct {
	Selected bool
}

func (SetSearch) isAction()     {}
func (SetFilter) isAction()     {}
func (ResetFilters) isAction()  {}
func (SetSorting) isAction()    {}
func (SetPage) isAction()       {}
func (SetPageSize) isAction()   {}
func (SetData) isAction()       {}
func (UpdateOrder) isAction()   {}
func (ToggleRow) isAction()     {}
func (ToggleAllRows) isAction() {}

// OrderPatch is a partial order update; nil fields are left untouched
type OrderPatch struct {
	User           *string
	Amount         *float64
	Status         *models.OrderStatus
	PaymentStatus  *models.PaymentStatus
	DeliveryStatus *models.DeliveryStatus
	Date           *string
}

func (p OrderPatch) applyTo(o models.Order) models.Order {
	if p.User != nil {
		o.User = *p.User
	}
	if p.Amount != nil {
		o.Amount = *p.Amount
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		o.PaymentStatus = *p.PaymentStatus
	}
	if p.DeliveryStatus != nil {
		o.DeliveryStatus = *p.DeliveryStatus
	}
	if p.Date != nil {
		o.Date = *p.Date
	}
	return o
}
