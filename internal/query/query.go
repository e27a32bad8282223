// Package query resolves a composite table query (search, facet filters,
// sort, page) into the visible row set. Two interchangeable executors
// satisfy the same contract: one over an in-memory dataset, one against
// the order service's paginated endpoint.
package query

import (
	"context"

	"github.com/furxx2000/orderdeck/internal/models"
)

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort names the single active sort column and its direction
type Sort struct {
	ID        string
	Direction Direction
}

// Query is the composite filter/sort/page descriptor
type Query struct {
	Search   string
	Filters  map[string][]string
	Sort     *Sort
	Page     int // 1-based
	PageSize int
}

// Result is the resolved row set for a query. TotalCount and Stats cover
// the whole filtered set, not just the returned page.
type Result struct {
	Orders     []models.Order
	TotalCount int
	PageCount  int
	Stats      models.OrderStats
}

// Executor resolves a query into its visible row set
type Executor interface {
	Execute(ctx context.Context, q Query) (*Result, error)
}

// Clone returns a deep copy of the query, so a snapshot handed to an
// asynchronous executor cannot observe later filter edits.
func (q Query) Clone() Query {
	c := q

	if q.Filters != nil {
		c.Filters = make(map[string][]string, len(q.Filters))
		for k, v := range q.Filters {
			c.Filters[k] = append([]string(nil), v...)
		}
	}

	if q.Sort != nil {
		s := *q.Sort
		c.Sort = &s
	}

	return c
}

// PageCountFor returns ceil(total/pageSize), with 0 for an empty set
func PageCountFor(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
