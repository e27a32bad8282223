package engine

import (
	"context"
	"sync"
	"time"

	"github.com/furxx2000/orderdeck/internal/query"
	"github.com/furxx2000/orderdeck/pkg/debounce"
	apperrors "github.com/furxx2000/orderdeck/pkg/errors"
	"github.com/furxx2000/orderdeck/pkg/logger"
)

// DefaultSearchDelay is how long the search text must stay stable before
// it drives a re-query
const DefaultSearchDelay = 300 * time.Millisecond

// Config configures a Store
type Config struct {
	Executor    query.Executor
	Logger      logger.Logger
	OnError     func(error)   // user-facing error sink (toast equivalent); optional
	SearchDelay time.Duration // defaults to DefaultSearchDelay
	PageSize    int           // defaults to DefaultPageSize
}

// Store is the dashboard's single state container. Dispatch applies an
// action synchronously; query-affecting actions additionally schedule an
// asynchronous re-query through the executor, superseding any re-query
// still in flight.
type Store struct {
	mu              sync.Mutex
	state           State
	executor        query.Executor
	logger          logger.Logger
	onError         func(error)
	searchDebouncer *debounce.Debouncer[string]
	debouncedSearch string
	generation      uint64
	cancelInflight  context.CancelFunc
	subscribers     []func(State)
	closed          bool
	wg              sync.WaitGroup
}

// NewStore creates a store in its initial loading state. Call Start to
// load the first page.
func NewStore(cfg Config) *Store {
	pageSize := cfg.PageSize

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	delay := cfg.SearchDelay

	if delay <= 0 {
		delay = DefaultSearchDelay
	}

	onError := cfg.OnError

	if onError == nil {
		onError = func(error) {}
	}

	s := &Store{
		state:    initialState(pageSize),
		executor: cfg.Executor,
		logger:   cfg.Logger,
		onError:  onError,
	}

	s.searchDebouncer = debounce.New(delay, s.onDebouncedSearch)

	return s
}

// Start issues the initial query
func (s *Store) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.requeryLocked()
	}
}

// Close aborts any in-flight query and pending debounce, then waits for
// background work to drain. No state changes land after Close returns.
func (s *Store) Close() {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	s.closed = true
	s.searchDebouncer.Stop()

	if s.cancelInflight != nil {
		s.cancelInflight()
	}

	s.mu.Unlock()
	s.wg.Wait()
}

// State returns a snapshot of the current state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to be called with a snapshot after every state
// change. Must be called before Start.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Dispatch applies an action. Safe for concurrent use; transitions are
// serialized and atomic.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	s.state = reduce(s.state, action)

	switch a := action.(type) {
	case SetSearch:
		// Debounced: only the value the user settles on drives a fetch.
		s.searchDebouncer.Set(a.Search)
	case ResetFilters:
		// Search was cleared synchronously, so the re-query must not
		// wait out the debounce.
		s.debouncedSearch = ""
		s.requeryLocked()
	case SetFilter, SetSorting, SetPage, SetPageSize:
		s.requeryLocked()
	}

	snapshot := s.state.clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Store) onDebouncedSearch(value string) {
	s.mu.Lock()

	// A reset or newer keystroke may have moved on; stale values are
	// dropped instead of re-queried.
	if s.closed || value != s.state.Search {
		s.mu.Unlock()
		return
	}

	s.debouncedSearch = value
	s.requeryLocked()
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// requeryLocked cancels the in-flight query, bumps the generation and
// launches a new one. Callers must hold the lock.
func (s *Store) requeryLocked() {
	s.generation++
	gen := s.generation

	if s.cancelInflight != nil {
		s.cancelInflight()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelInflight = cancel

	s.state.IsLoading = true

	q := query.Query{
		Search:   s.debouncedSearch,
		Filters:  s.state.Filters,
		Sort:     s.state.Sort,
		Page:     s.state.Page,
		PageSize: s.state.PageSize,
	}.Clone()

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer cancel()

		result, err := s.executor.Execute(ctx, q)

		s.mu.Lock()

		// Only the winning generation may commit.
		if s.closed || gen != s.generation {
			s.mu.Unlock()
			return
		}

		if err != nil {
			if apperrors.IsCancellation(err) {
				s.mu.Unlock()
				return
			}

			// Previous data is retained; only the loading flag clears.
			s.state.IsLoading = false
			snapshot := s.state.clone()
			s.mu.Unlock()

			s.logger.Error("Order query failed", "error", err)
			s.onError(err)
			s.notify(snapshot)
			return
		}

		s.state = reduce(s.state, SetData{
			Orders:     result.Orders,
			TotalCount: result.TotalCount,
			PageCount:  result.PageCount,
			Stats:      result.Stats,
		})
		snapshot := s.state.clone()
		s.mu.Unlock()

		s.notify(snapshot)
	}()
}

func (s *Store) notify(snapshot State) {
	for _, fn := range s.subscribers {
		fn(snapshot)
	}
}
