package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/furxx2000/orderdeck/internal/models"
	"github.com/furxx2000/orderdeck/internal/query"
	"github.com/furxx2000/orderdeck/internal/stats"
	apperrors "github.com/furxx2000/orderdeck/pkg/errors"
	"github.com/furxx2000/orderdeck/pkg/logger"
)

// blockingExecutor hands each Execute call to the test, which decides
// when and how it resolves.
type blockingExecutor struct {
	calls chan *execCall
}

type execCall struct {
	Query  query.Query
	Ctx    context.Context
	result chan execResult
}

type execResult struct {
	res *query.Result
	err error
}

func newBlockingExecutor() *blockingExecutor {
	return &blockingExecutor{calls: make(chan *execCall, 16)}
}

func (e *blockingExecutor) Execute(ctx context.Context, q query.Query) (*query.Result, error) {
	call := &execCall{Query: q, Ctx: ctx, result: make(chan execResult, 1)}
	e.calls <- call

	r := <-call.result
	return r.res, r.err
}

func (e *blockingExecutor) next(t *testing.T) *execCall {
	t.Helper()

	select {
	case c := <-e.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for executor call")
		return nil
	}
}

func (e *blockingExecutor) expectNoCall(t *testing.T, within time.Duration) {
	t.Helper()

	select {
	case c := <-e.calls:
		t.Fatalf("unexpected executor call: %+v", c.Query)
	case <-time.After(within):
	}
}

func resultFor(orders []models.Order) *query.Result {
	return &query.Result{
		Orders:     orders,
		TotalCount: len(orders),
		PageCount:  1,
		Stats:      stats.Compute(orders),
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)

	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}

	t.Fatal("condition not reached in time")
}

func ordersA() []models.Order {
	return []models.Order{
		{ID: "a1", User: "Alice", Amount: 100, Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPaid, DeliveryStatus: models.DeliveryStatusPending, Date: "2024-11-01"},
	}
}

func ordersB() []models.Order {
	return []models.Order{
		{ID: "b1", User: "Bob", Amount: 200, Status: models.OrderStatusProcessing, PaymentStatus: models.PaymentStatusPaid, DeliveryStatus: models.DeliveryStatusShipping, Date: "2024-11-02"},
		{ID: "b2", User: "Bruce", Amount: 300, Status: models.OrderStatusCompleted, PaymentStatus: models.PaymentStatusPaid, DeliveryStatus: models.DeliveryStatusDelivered, Date: "2024-11-03"},
	}
}

func newTestStore(exec query.Executor, onError func(error)) *Store {
	return NewStore(Config{
		Executor:    exec,
		Logger:      logger.Nop(),
		OnError:     onError,
		SearchDelay: 10 * time.Millisecond,
	})
}

func TestStartLoadsInitialData(t *testing.T) {
	exec := newBlockingExecutor()
	store := newTestStore(exec, nil)
	defer store.Close()

	store.Start()

	if !store.State().IsLoading {
		t.Error("IsLoading should be true while the initial query runs")
	}

	call := exec.next(t)

	if call.Query.Page != 1 || call.Query.PageSize != DefaultPageSize {
		t.Errorf("initial query = %+v", call.Query)
	}

	call.result <- execResult{res: resultFor(ordersA())}

	waitFor(t, func() bool { return !store.State().IsLoading })

	state := store.State()

	if len(state.Orders) != 1 || state.Orders[0].ID != "a1" {
		t.Errorf("Orders = %+v", state.Orders)
	}
	if state.TotalCount != 1 || state.PageCount != 1 {
		t.Errorf("TotalCount=%d PageCount=%d", state.TotalCount, state.PageCount)
	}
}

// If query A is superseded by query B, the final state reflects only B,
// regardless of which underlying call resolves first.
func TestSupersededQueryNeverOverwrites(t *testing.T) {
	for _, resolveStaleFirst := range []bool{true, false} {
		exec := newBlockingExecutor()
		store := newTestStore(exec, nil)

		store.Start()
		callA := exec.next(t)

		store.Dispatch(SetPage{Page: 2})
		callB := exec.next(t)

		if resolveStaleFirst {
			callA.result <- execResult{res: resultFor(ordersA())}
			callB.result <- execResult{res: resultFor(ordersB())}
		} else {
			callB.result <- execResult{res: resultFor(ordersB())}
			callA.result <- execResult{res: resultFor(ordersA())}
		}

		waitFor(t, func() bool {
			s := store.State()
			return !s.IsLoading && len(s.Orders) == 2
		})

		// Give the stale result a chance to land wrongly.
		time.Sleep(20 * time.Millisecond)

		state := store.State()

		if len(state.Orders) != 2 || state.Orders[0].ID != "b1" {
			t.Errorf("resolveStaleFirst=%v: stale result overwrote state: %+v", resolveStaleFirst, state.Orders)
		}

		store.Close()
	}
}

func TestSupersededRequestContextIsCanceled(t *testing.T) {
	exec := newBlockingExecutor()
	store := newTestStore(exec, nil)
	defer store.Close()

	store.Start()
	callA := exec.next(t)

	store.Dispatch(SetPage{Page: 2})
	callB := exec.next(t)

	select {
	case <-callA.Ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded request context was not canceled")
	}

	callA.result <- execResult{err: callA.Ctx.Err()}
	callB.result <- execResult{res: resultFor(ordersB())}

	waitFor(t, func() bool { return !store.State().IsLoading })
}

func TestExecutorFailureRetainsDataAndReportsError(t *testing.T) {
	exec := newBlockingExecutor()

	var mu sync.Mutex
	var reported []error

	store := newTestStore(exec, func(err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	})
	defer store.Close()

	store.Start()
	exec.next(t).result <- execResult{res: resultFor(ordersB())}
	waitFor(t, func() bool { return !store.State().IsLoading })

	store.Dispatch(SetPage{Page: 2})
	exec.next(t).result <- execResult{err: apperrors.NewTemporaryError("orders service unavailable")}

	waitFor(t, func() bool { return !store.State().IsLoading })

	state := store.State()

	if len(state.Orders) != 2 {
		t.Errorf("failure blanked orders: %+v", state.Orders)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(reported) != 1 {
		t.Fatalf("reported errors = %v", reported)
	}
}

func TestCancellationIsSilent(t *testing.T) {
	exec := newBlockingExecutor()

	var mu sync.Mutex
	var reported []error

	store := newTestStore(exec, func(err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	})
	defer store.Close()

	store.Start()
	callA := exec.next(t)

	store.Dispatch(SetPage{Page: 2})
	callA.result <- execResult{err: apperrors.NewCanceledError("superseded")}

	exec.next(t).result <- execResult{res: resultFor(ordersA())}
	waitFor(t, func() bool { return !store.State().IsLoading })

	mu.Lock()
	defer mu.Unlock()

	if len(reported) != 0 {
		t.Errorf("cancellation surfaced as error: %v", reported)
	}
}

func TestSearchIsDebouncedToSingleQuery(t *testing.T) {
	exec := newBlockingExecutor()
	store := newTestStore(exec, nil)
	defer store.Close()

	store.Start()
	exec.next(t).result <- execResult{res: resultFor(ordersA())}
	waitFor(t, func() bool { return !store.State().IsLoading })

	store.Dispatch(SetSearch{Search: "a"})
	store.Dispatch(SetSearch{Search: "al"})
	store.Dispatch(SetSearch{Search: "ali"})

	call := exec.next(t)

	if call.Query.Search != "ali" {
		t.Errorf("debounced query search = %q, want %q", call.Query.Search, "ali")
	}
	if call.Query.Page != 1 {
		t.Errorf("search did not reset page: %d", call.Query.Page)
	}

	call.result <- execResult{res: resultFor(ordersA())}

	// The two intermediate values must never produce queries.
	exec.expectNoCall(t, 50*time.Millisecond)
}

func TestNonQueryActionsDoNotRefetch(t *testing.T) {
	exec := newBlockingExecutor()
	store := newTestStore(exec, nil)
	defer store.Close()

	store.Start()
	exec.next(t).result <- execResult{res: resultFor(ordersB())}
	waitFor(t, func() bool { return !store.State().IsLoading })

	delivered := models.DeliveryStatusDelivered
	store.Dispatch(UpdateOrder{OrderID: "b1", Patch: OrderPatch{DeliveryStatus: &delivered}})
	store.Dispatch(ToggleRow{OrderID: "b1", Selected: true})
	store.Dispatch(ToggleAllRows{Selected: true})

	exec.expectNoCall(t, 50*time.Millisecond)

	state := store.State()

	if state.Orders[0].DeliveryStatus != models.DeliveryStatusDelivered {
		t.Errorf("UPDATE_ORDER not applied: %+v", state.Orders[0])
	}
	if want := stats.Compute(state.Orders); state.Stats != want {
		t.Errorf("stats drifted: %+v != %+v", state.Stats, want)
	}
}

func TestCloseDropsLateResults(t *testing.T) {
	exec := newBlockingExecutor()
	store := newTestStore(exec, nil)

	store.Start()
	call := exec.next(t)

	done := make(chan struct{})

	go func() {
		store.Close()
		close(done)
	}()

	// Close cancels the in-flight context before waiting on the worker,
	// so once Done fires the store is already closed. A result delivered
	// after that point must be dropped.
	select {
	case <-call.Ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the in-flight request")
	}

	call.result <- execResult{res: resultFor(ordersA())}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	if got := store.State().Orders; len(got) != 0 {
		t.Errorf("result landed after Close: %+v", got)
	}
}

// End to end against the real client-side executor: the stats the store
// carries always equal a recompute over the filtered set.
func TestStoreWithClientExecutor(t *testing.T) {
	dataset := []models.Order{
		{ID: "1", User: "Alice", Amount: 100, Status: models.OrderStatusCompleted, PaymentStatus: models.PaymentStatusPaid, DeliveryStatus: models.DeliveryStatusDelivered, Date: "2024-11-01"},
		{ID: "2", User: "Bob", Amount: 200, Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending, DeliveryStatus: models.DeliveryStatusPending, Date: "2024-11-03"},
	}

	store := NewStore(Config{
		Executor:    query.NewClientExecutor(dataset),
		Logger:      logger.Nop(),
		SearchDelay: 5 * time.Millisecond,
	})
	defer store.Close()

	store.Start()
	waitFor(t, func() bool { return !store.State().IsLoading })

	store.Dispatch(SetFilter{Key: "status", Values: []string{"pending"}})
	waitFor(t, func() bool {
		s := store.State()
		return !s.IsLoading && s.TotalCount == 1
	})

	state := store.State()

	if len(state.Orders) != 1 || state.Orders[0].ID != "2" {
		t.Fatalf("filtered rows = %+v", state.Orders)
	}
	if state.Stats.TotalAmount != 200 || state.Stats.PendingCount != 1 {
		t.Errorf("stats = %+v", state.Stats)
	}
}
