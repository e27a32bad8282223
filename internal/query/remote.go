package query

import (
	"context"

	"github.com/furxx2000/orderdeck/internal/models"
	apperrors "github.com/furxx2000/orderdeck/pkg/errors"
)

// PaginatedFetcher is the slice of the order-service client the remote
// executor needs
type PaginatedFetcher interface {
	FetchPaginatedOrders(ctx context.Context, page, pageSize int, sortID, sortDirection, search string, filters map[string][]string) (*models.PaginatedOrders, error)
}

// RemoteExecutor resolves queries against the order service's paginated
// endpoint. Cancelling the context aborts the in-flight request and
// surfaces as a cancellation, never as a user-visible failure.
type RemoteExecutor struct {
	client PaginatedFetcher
}

// NewRemoteExecutor creates an executor backed by the given client
func NewRemoteExecutor(client PaginatedFetcher) *RemoteExecutor {
	return &RemoteExecutor{client: client}
}

func (e *RemoteExecutor) Execute(ctx context.Context, q Query) (*Result, error) {
	var sortID, sortDirection string

	if q.Sort != nil {
		sortID = q.Sort.ID
		sortDirection = string(q.Sort.Direction)
	}

	resp, err := e.client.FetchPaginatedOrders(ctx, q.Page, q.PageSize, sortID, sortDirection, q.Search, q.Filters)

	if err != nil {
		if ctx.Err() != nil || apperrors.IsCancellation(err) {
			return nil, apperrors.NewCanceledError("paginated fetch superseded")
		}
		return nil, err
	}

	return &Result{
		Orders:     resp.Data,
		TotalCount: resp.Meta.Total,
		PageCount:  resp.Meta.TotalPages,
		Stats:      resp.Stats,
	}, nil
}
