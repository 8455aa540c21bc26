package search

import (
	"context"
	"slices"
	"sync"
	"time"

	"peoplesearch/internal/domain"
	"peoplesearch/internal/eventbus"
	"peoplesearch/internal/observable"
)

// Default pipeline timings
const (
	DefaultDebounce        = time.Second
	DefaultProcessingDelay = time.Second
	DefaultGracePeriod     = 5 * time.Second
)

// Option configures a Store
type Option func(*Store)

// WithDebounce sets the quiescence window applied to query edits
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithProcessingDelay sets the simulated lookup latency for non-blank queries
func WithProcessingDelay(d time.Duration) Option {
	return func(s *Store) { s.delay = d }
}

// WithGracePeriod sets how long the pipeline keeps running after the last
// results subscriber leaves
func WithGracePeriod(d time.Duration) Option {
	return func(s *Store) { s.grace = d }
}

// WithEventBus makes the store publish pipeline events on bus
func WithEventBus(bus eventbus.EventBus) Option {
	return func(s *Store) { s.bus = bus }
}

// Store holds the search state for one screen: the raw query, the candidate
// dataset, the filtered results and the busy flag.
//
// Query edits and dataset changes reach a shared recompute step by two paths.
// Edits are debounced; dataset changes recombine immediately with the last
// accepted query. Non-blank queries wait out the processing delay before
// filtering, and the busy flag is raised for that wait.
//
// A pass that is already in its processing delay is not cancelled by a later
// edit. Passes may overlap and the last one to publish wins. Busy counts
// pending passes, so it only drops once all of them have published.
//
// The store lives until the context given to New is cancelled.
type Store struct {
	debounce time.Duration
	delay    time.Duration
	grace    time.Duration
	bus      eventbus.EventBus

	query   *observable.Cell[string]
	results *observable.Cell[[]domain.Person]
	busy    *observable.Cell[bool]

	done  <-chan struct{}
	wg    sync.WaitGroup
	tails sync.WaitGroup

	mu        sync.Mutex
	dataset   []domain.Person
	accepted  string
	debouncer *time.Timer
	queryGen  uint64
	inflight  int
	keepAlive *time.Timer
	aliveGen  uint64
	suspended bool
	stale     bool
	closed    bool
}

// New creates a store over dataset. The initial query is empty, so the
// initial results are the whole dataset. Cancelling ctx tears the store down.
func New(ctx context.Context, dataset []domain.Person, opts ...Option) *Store {
	s := &Store{
		debounce: DefaultDebounce,
		delay:    DefaultProcessingDelay,
		grace:    DefaultGracePeriod,
		done:     ctx.Done(),
		dataset:  slices.Clone(dataset),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.query = observable.NewCell("")
	s.results = observable.NewCell(Filter(s.dataset, ""), observable.WithSubscriberHook(s.onResultSubscribers))
	s.busy = observable.NewCell(false)

	s.mu.Lock()
	s.armKeepAliveLocked()
	s.mu.Unlock()

	s.wg.Add(1)
	go s.watchScope()

	return s
}

// SetQuery replaces the query and restarts the debounce window, even when
// text equals the current query
func (s *Store) SetQuery(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.query.Set(text)
	s.publish(eventbus.QueryChangedEvent{Query: text})

	s.queryGen++
	gen := s.queryGen
	if s.debouncer != nil {
		s.debouncer.Stop()
	}
	s.debouncer = time.AfterFunc(s.debounce, func() { s.accept(gen, text) })
}

// SetDataset replaces the candidate set and recomputes against the last
// accepted query without waiting for the debounce window
func (s *Store) SetDataset(people []domain.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.dataset = slices.Clone(people)
	s.publish(eventbus.DatasetChangedEvent{Count: len(people)})
	s.recomputeLocked()
}

// Query returns the latest query
func (s *Store) Query() string {
	return s.query.Get()
}

// Results returns a copy of the last published result list
func (s *Store) Results() []domain.Person {
	return slices.Clone(s.results.Get())
}

// Busy reports whether a filter pass is pending
func (s *Store) Busy() bool {
	return s.busy.Get()
}

// Dataset returns a copy of the current candidate set
func (s *Store) Dataset() []domain.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.dataset)
}

// SubscribeQuery observes the query
func (s *Store) SubscribeQuery() *observable.Subscription[string] {
	return s.query.Subscribe()
}

// SubscribeResults observes the result list. Subscribers must not modify the
// slices they receive.
func (s *Store) SubscribeResults() *observable.Subscription[[]domain.Person] {
	return s.results.Subscribe()
}

// SubscribeBusy observes the busy flag
func (s *Store) SubscribeBusy() *observable.Subscription[bool] {
	return s.busy.Subscribe()
}

// Wait blocks until the store has shut down after its context was cancelled
func (s *Store) Wait() {
	s.wg.Wait()
}

// accept runs when the debounce window for generation gen elapses
func (s *Store) accept(gen uint64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.queryGen {
		return
	}
	s.accepted = text
	s.recomputeLocked()
}

// recomputeLocked combines the accepted query with the dataset.
// Blank queries publish immediately; others are handed to a processing tail.
func (s *Store) recomputeLocked() {
	if s.suspended {
		s.stale = true
		return
	}

	query, dataset := s.accepted, s.dataset
	start := time.Now()

	if IsBlank(query) {
		s.publish(eventbus.PipelineStartedEvent{Query: query})
		result := Filter(dataset, query)
		s.results.Set(result)
		s.publish(eventbus.ResultsPublishedEvent{Query: query, Count: len(result), Duration: time.Since(start)})
		return
	}

	s.publish(eventbus.PipelineStartedEvent{Query: query, Filtered: true})
	s.inflight++
	if s.inflight == 1 {
		s.busy.Set(true)
	}
	s.tails.Add(1)
	go s.process(query, dataset, start)
}

// process waits out the processing delay and publishes the filtered result
func (s *Store) process(query string, dataset []domain.Person, start time.Time) {
	defer s.tails.Done()

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-s.done:
		s.finish(query, nil, start, false)
		return
	}

	s.finish(query, Filter(dataset, query), start, true)
}

// finish publishes a tail's result, then lowers busy once no tail is pending
func (s *Store) finish(query string, result []domain.Person, start time.Time, publish bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if publish {
		s.results.Set(result)
		s.publish(eventbus.ResultsPublishedEvent{Query: query, Count: len(result), Duration: time.Since(start)})
	}
	s.inflight--
	if s.inflight == 0 {
		s.busy.Set(false)
	}
}

// onResultSubscribers starts the keep-alive timer when the last results
// subscriber leaves and resumes a suspended pipeline when one returns
func (s *Store) onResultSubscribers(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if count == 0 {
		s.armKeepAliveLocked()
		return
	}

	s.stopKeepAliveLocked()
	if !s.suspended {
		return
	}
	s.suspended = false
	recompute := s.stale
	s.stale = false
	s.publish(eventbus.PipelineResumedEvent{Recomputed: recompute})
	if recompute {
		s.recomputeLocked()
	}
}

func (s *Store) armKeepAliveLocked() {
	s.stopKeepAliveLocked()
	gen := s.aliveGen
	s.keepAlive = time.AfterFunc(s.grace, func() { s.expire(gen) })
}

func (s *Store) stopKeepAliveLocked() {
	if s.keepAlive != nil {
		s.keepAlive.Stop()
		s.keepAlive = nil
	}
	s.aliveGen++
}

// expire suspends the pipeline when the grace window ends unobserved
func (s *Store) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.aliveGen || s.suspended || s.results.Subscribers() > 0 {
		return
	}
	s.suspended = true
	s.publish(eventbus.PipelineSuspendedEvent{})
}

// watchScope tears the store down when its context ends
func (s *Store) watchScope() {
	defer s.wg.Done()
	<-s.done

	s.mu.Lock()
	s.closed = true
	if s.debouncer != nil {
		s.debouncer.Stop()
	}
	s.stopKeepAliveLocked()
	s.mu.Unlock()

	// Tails see done and lower busy on their way out
	s.tails.Wait()

	s.query.Close()
	s.results.Close()
	s.busy.Close()
}

func (s *Store) publish(e eventbus.DomainEvent) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
