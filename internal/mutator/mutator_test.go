package mutator

import (
	"context"
	"sync"
	"testing"

	"github.com/furxx2000/orderdeck/internal/engine"
	"github.com/furxx2000/orderdeck/internal/models"
	apperrors "github.com/furxx2000/orderdeck/pkg/errors"
	"github.com/furxx2000/orderdeck/pkg/logger"
)

type fakeUpdater struct {
	mu      sync.Mutex
	respond func(orderID string, status models.DeliveryStatus) (*models.Order, error)
	started chan struct{}
	release chan struct{}
}

func (f *fakeUpdater) UpdateDeliveryStatus(ctx context.Context, orderID string, status models.DeliveryStatus) (*models.Order, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.respond(orderID, status)
}

type recordingDispatcher struct {
	mu      sync.Mutex
	actions []engine.Action
}

func (d *recordingDispatcher) Dispatch(a engine.Action) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, a)
}

func (d *recordingDispatcher) all() []engine.Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]engine.Action(nil), d.actions...)
}

func echoUpdater() *fakeUpdater {
	return &fakeUpdater{
		respond: func(orderID string, status models.DeliveryStatus) (*models.Order, error) {
			return &models.Order{ID: orderID, DeliveryStatus: status}, nil
		},
	}
}

func TestSuccessfulChangeConfirmsAndDispatches(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	m := New(echoUpdater(), dispatcher, logger.Nop(), nil)

	cell := NewStatusCell(models.DeliveryStatusPreparing)

	err := m.Change(context.Background(), cell, "ord-1", models.DeliveryStatusShipping)

	if err != nil {
		t.Fatalf("Change failed: %v", err)
	}
	if got := cell.Display(); got != models.DeliveryStatusShipping {
		t.Errorf("Display = %v, want shipping", got)
	}
	if cell.Pending() {
		t.Error("cell still pending after confirm")
	}

	actions := dispatcher.all()

	if len(actions) != 1 {
		t.Fatalf("dispatched %d actions, want 1", len(actions))
	}

	update, ok := actions[0].(engine.UpdateOrder)

	if !ok || update.OrderID != "ord-1" || *update.Patch.DeliveryStatus != models.DeliveryStatusShipping {
		t.Errorf("dispatched %+v", actions[0])
	}
}

func TestRejectionRollsBackAndSurfacesMessage(t *testing.T) {
	rejection := apperrors.NewBusinessRuleError("a cancelled order can only have delivery status 'cancelled'")

	updater := &fakeUpdater{
		respond: func(string, models.DeliveryStatus) (*models.Order, error) {
			return nil, rejection
		},
	}

	dispatcher := &recordingDispatcher{}

	var surfaced []string
	m := New(updater, dispatcher, logger.Nop(), func(err error) {
		surfaced = append(surfaced, err.Error())
	})

	cell := NewStatusCell(models.DeliveryStatusCancelled)

	err := m.Change(context.Background(), cell, "ord-9", models.DeliveryStatusShipping)

	if err == nil {
		t.Fatal("expected rejection")
	}
	if got := cell.Display(); got != models.DeliveryStatusCancelled {
		t.Errorf("Display = %v, want pre-mutation value cancelled", got)
	}
	if cell.Pending() {
		t.Error("cell still pending after rollback")
	}
	if len(dispatcher.all()) != 0 {
		t.Error("rejection must not dispatch UPDATE_ORDER")
	}
	if len(surfaced) != 1 || surfaced[0] != rejection.Message {
		t.Errorf("surfaced = %v, want verbatim rejection message", surfaced)
	}
}

// The display is optimistic while the request is still in flight.
func TestOptimisticValueShownWhilePending(t *testing.T) {
	updater := echoUpdater()
	updater.started = make(chan struct{}, 1)
	updater.release = make(chan struct{})

	m := New(updater, &recordingDispatcher{}, logger.Nop(), nil)
	cell := NewStatusCell(models.DeliveryStatusPending)

	done := make(chan error, 1)

	go func() {
		done <- m.Change(context.Background(), cell, "ord-2", models.DeliveryStatusPreparing)
	}()

	<-updater.started

	if got := cell.Display(); got != models.DeliveryStatusPreparing {
		t.Errorf("Display while pending = %v, want optimistic preparing", got)
	}
	if !cell.Pending() {
		t.Error("cell should be pending mid-flight")
	}

	close(updater.release)

	if err := <-done; err != nil {
		t.Fatalf("Change failed: %v", err)
	}
}

// A second change before the first resolves re-runs the protocol from the
// new optimistic value; a later rejection still reverts to the value that
// was confirmed before any of it started.
func TestSecondChangeKeepsOriginalRevertTarget(t *testing.T) {
	cell := NewStatusCell(models.DeliveryStatusPending)

	prev1 := cell.beginOptimistic(models.DeliveryStatusPreparing)
	prev2 := cell.beginOptimistic(models.DeliveryStatusShipping)

	if prev1 != models.DeliveryStatusPending || prev2 != models.DeliveryStatusPending {
		t.Errorf("revert targets = %v, %v; want pending for both", prev1, prev2)
	}
	if got := cell.Display(); got != models.DeliveryStatusShipping {
		t.Errorf("Display = %v, want last write shipping", got)
	}

	cell.revert(prev2)

	if got := cell.Display(); got != models.DeliveryStatusPending {
		t.Errorf("after revert Display = %v, want pending", got)
	}
}
