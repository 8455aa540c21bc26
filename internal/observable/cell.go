// Package observable provides replay-latest value cells.
//
// A Cell holds one value. Every subscriber receives the value current at
// subscription time followed by every later Set, in the order the values were
// produced. Delivery goes through a per-subscriber FIFO mailbox, so Set never
// blocks on a slow reader and nothing is dropped.
package observable

import "sync"

// Option configures a Cell
type Option func(*options)

type options struct {
	hook func(int)
}

// WithSubscriberHook registers fn to be called with the new subscriber count
// after every Subscribe and Unsubscribe. fn runs outside the cell lock, so it
// may call Get, Set and Subscribers, but must not Subscribe or Unsubscribe.
func WithSubscriberHook(fn func(count int)) Option {
	return func(o *options) {
		o.hook = fn
	}
}

// Cell is a concurrency-safe observable value
type Cell[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[uint64]*mailbox[T]
	nextID uint64
	closed bool
	hook   func(int)
	// hookMu serialises subscriber changes so the hook sees counts in order
	hookMu sync.Mutex
}

// NewCell creates a cell holding initial
func NewCell[T any](initial T, opts ...Option) *Cell[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Cell[T]{
		value: initial,
		subs:  make(map[uint64]*mailbox[T]),
		hook:  o.hook,
	}
}

// Get returns the current value
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the value and queues it for every subscriber.
// Set on a closed cell is ignored.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.value = v
	for _, mb := range c.subs {
		mb.push(v)
	}
}

// Subscribe registers a new subscriber. The current value is delivered first.
// Subscribing to a closed cell yields the last value and then a closed channel.
func (c *Cell[T]) Subscribe() *Subscription[T] {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()

	c.mu.Lock()
	mb := newMailbox[T]()
	mb.push(c.value)
	if c.closed {
		mb.finish()
		c.mu.Unlock()
		return &Subscription[T]{mb: mb, cancel: func() {}}
	}
	c.nextID++
	id := c.nextID
	c.subs[id] = mb
	count := len(c.subs)
	c.mu.Unlock()

	c.notify(count)

	var once sync.Once
	return &Subscription[T]{
		mb: mb,
		cancel: func() {
			once.Do(func() {
				c.hookMu.Lock()
				defer c.hookMu.Unlock()

				c.mu.Lock()
				_, ok := c.subs[id]
				delete(c.subs, id)
				count := len(c.subs)
				c.mu.Unlock()
				mb.stop()
				if ok {
					c.notify(count)
				}
			})
		},
	}
}

// Subscribers returns the number of active subscriptions
func (c *Cell[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close ends every subscription once its queued values have been delivered.
// Later Set calls are ignored.
func (c *Cell[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = make(map[uint64]*mailbox[T])
	c.mu.Unlock()

	for _, mb := range subs {
		mb.finish()
	}
}

// notify must be called with hookMu held
func (c *Cell[T]) notify(count int) {
	if c.hook != nil {
		c.hook(count)
	}
}

// Subscription is one reader of a Cell
type Subscription[T any] struct {
	mb     *mailbox[T]
	cancel func()
}

// C returns the delivery channel. It is closed after Unsubscribe or after the
// cell is closed and every queued value has been received.
func (s *Subscription[T]) C() <-chan T {
	return s.mb.out
}

// Unsubscribe stops delivery immediately. Queued values are discarded.
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()
}

// mailbox is an unbounded FIFO drained into out by a single goroutine
type mailbox[T any] struct {
	mu    sync.Mutex
	queue []T
	eof   bool
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
	out   chan T
}

func newMailbox[T any]() *mailbox[T] {
	mb := &mailbox[T]{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan T),
	}
	go mb.pump()
	return mb
}

func (mb *mailbox[T]) push(v T) {
	mb.mu.Lock()
	mb.queue = append(mb.queue, v)
	mb.mu.Unlock()
	mb.signal()
}

// finish closes out after the queue drains
func (mb *mailbox[T]) finish() {
	mb.mu.Lock()
	mb.eof = true
	mb.mu.Unlock()
	mb.signal()
}

// stop closes out without draining
func (mb *mailbox[T]) stop() {
	mb.once.Do(func() { close(mb.done) })
}

func (mb *mailbox[T]) signal() {
	select {
	case mb.wake <- struct{}{}:
	default:
	}
}

func (mb *mailbox[T]) pump() {
	defer close(mb.out)
	for {
		mb.mu.Lock()
		batch, eof := mb.queue, mb.eof
		mb.queue = nil
		mb.mu.Unlock()

		for _, v := range batch {
			select {
			case mb.out <- v:
			case <-mb.done:
				return
			}
		}
		if eof {
			return
		}

		select {
		case <-mb.wake:
		case <-mb.done:
			return
		}
	}
}
