// Package mutator performs the optimistic update protocol for a single
// order's delivery status: apply locally, confirm with the order service,
// roll back on rejection. It runs outside the store's query cycle and
// feeds a confirmed single-order patch back in on success.
package mutator

import (
	"context"
	"sync"

	"github.com/furxx2000/orderdeck/internal/engine"
	"github.com/furxx2000/orderdeck/internal/models"
	"github.com/furxx2000/orderdeck/pkg/logger"
)

// StatusUpdater is the slice of the order-service client the mutator needs
type StatusUpdater interface {
	UpdateDeliveryStatus(ctx context.Context, orderID string, status models.DeliveryStatus) (*models.Order, error)
}

// Dispatcher accepts confirmed patches back into the state container
type Dispatcher interface {
	Dispatch(engine.Action)
}

// StatusCell is the per-row display state for the delivery-status control.
// It moves Confirmed -> Pending(optimistic, previous) -> Confirmed, where
// the final value is either the server's answer or, on rejection, the
// captured previous value. It is deliberately separate from the store's
// loading flag.
type StatusCell struct {
	mu       sync.Mutex
	display  models.DeliveryStatus
	previous models.DeliveryStatus
	pending  bool
}

// NewStatusCell creates a cell showing the given confirmed status
func NewStatusCell(confirmed models.DeliveryStatus) *StatusCell {
	return &StatusCell{display: confirmed}
}

// Display returns the status the row currently shows
func (c *StatusCell) Display() models.DeliveryStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// Pending reports whether an update is in flight for this row
func (c *StatusCell) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// beginOptimistic shows the new value immediately and remembers what to
// revert to. A second change while pending keeps the original previous
// value: last write wins, but a rejection still lands on solid ground.
func (c *StatusCell) beginOptimistic(next models.DeliveryStatus) models.DeliveryStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pending {
		c.previous = c.display
		c.pending = true
	}

	c.display = next
	return c.previous
}

func (c *StatusCell) confirm(value models.DeliveryStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.display = value
	c.pending = false
}

func (c *StatusCell) revert(previous models.DeliveryStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.display = previous
	c.pending = false
}

// Mutator drives the optimistic update protocol against the order service
type Mutator struct {
	client  StatusUpdater
	store   Dispatcher
	logger  logger.Logger
	onError func(error)
}

// New creates a mutator. onError receives the server's rejection message
// for display; it may be nil.
func New(client StatusUpdater, store Dispatcher, log logger.Logger, onError func(error)) *Mutator {
	if onError == nil {
		onError = func(error) {}
	}

	return &Mutator{
		client:  client,
		store:   store,
		logger:  log,
		onError: onError,
	}
}

// Change applies newStatus optimistically to cell, asks the order service
// to confirm, and either commits the server's value into the store or
// rolls the cell back. The returned error is the server rejection, if any.
func (m *Mutator) Change(ctx context.Context, cell *StatusCell, orderID string, newStatus models.DeliveryStatus) error {
	previous := cell.beginOptimistic(newStatus)

	updated, err := m.client.UpdateDeliveryStatus(ctx, orderID, newStatus)

	if err != nil {
		cell.revert(previous)
		m.logger.Warn("Delivery status update rejected",
			"orderID", orderID,
			"requested", newStatus,
			"error", err)
		m.onError(err)
		return err
	}

	// The server is authoritative; its value may differ from what was
	// optimistically shown.
	cell.confirm(updated.DeliveryStatus)

	confirmed := updated.DeliveryStatus
	m.store.Dispatch(engine.UpdateOrder{
		OrderID: orderID,
		Patch:   engine.OrderPatch{DeliveryStatus: &confirmed},
	})

	return nil
}
