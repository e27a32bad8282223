package query

import (
	"context"
	"sort"
	"strconv"

	"github.com/furxx2000/orderdeck/internal/models"
	"github.com/furxx2000/orderdeck/internal/stats"
)

// ClientExecutor resolves queries over a dataset fully resident in memory
type ClientExecutor struct {
	orders []models.Order
}

// NewClientExecutor creates an executor over the given dataset. The slice
// is copied; later edits to the caller's slice are not observed.
func NewClientExecutor(orders []models.Order) *ClientExecutor {
	return &ClientExecutor{
		orders: append([]models.Order(nil), orders...),
	}
}

// Execute filters, sorts and pages the in-memory dataset. TotalCount and
// Stats are computed over the filtered set before pagination.
func (e *ClientExecutor) Execute(ctx context.Context, q Query) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filtered := make([]models.Order, 0, len(e.orders))

	for _, o := range e.orders {
		if matches(o, q) {
			filtered = append(filtered, o)
		}
	}

	if q.Sort != nil {
		sortOrders(filtered, *q.Sort)
	}

	total := len(filtered)
	pageCount := PageCountFor(total, q.PageSize)
	aggregates := stats.Compute(filtered)

	start := (q.Page - 1) * q.PageSize
	end := start + q.PageSize

	if start < 0 || start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Result{
		Orders:     append([]models.Order(nil), filtered[start:end]...),
		TotalCount: total,
		PageCount:  pageCount,
		Stats:      aggregates,
	}, nil
}

func matches(o models.Order, q Query) bool {
	if q.Search != "" && !FuzzyMatch(q.Search, o.User) && !FuzzyMatch(q.Search, o.ID) {
		return false
	}

	for column, accepted := range q.Filters {
		if len(accepted) == 0 {
			continue
		}

		value := columnValue(o, column)
		found := false

		for _, v := range accepted {
			if v == value {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

func columnValue(o models.Order, column string) string {
	switch column {
	case "id":
		return o.ID
	case "user":
		return o.User
	case "amount":
		return strconv.FormatFloat(o.Amount, 'f', -1, 64)
	case "status":
		return string(o.Status)
	case "paymentStatus":
		return string(o.PaymentStatus)
	case "deliveryStatus":
		return string(o.DeliveryStatus)
	case "date":
		return o.Date
	default:
		return ""
	}
}

// sortOrders sorts in place, stably, so equal keys keep their input order
func sortOrders(orders []models.Order, s Sort) {
	less := func(a, b models.Order) bool {
		if s.ID == "amount" {
			return a.Amount < b.Amount
		}
		return columnValue(a, s.ID) < columnValue(b, s.ID)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		if s.Direction == Desc {
			return less(orders[j], orders[i])
		}
		return less(orders[i], orders[j])
	})
}
