package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []DomainEvent
}

func (r *recorder) handle(e DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

func TestSubscribeReceivesOnlyMatchingType(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var rec recorder
	b.Subscribe(EventQueryChanged, rec.handle)

	b.Publish(QueryChangedEvent{Query: "ma"})
	b.Publish(DatasetChangedEvent{Count: 4})
	b.Publish(QueryChangedEvent{Query: "mar"})

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	events := rec.snapshot()
	assert.Equal(t, QueryChangedEvent{Query: "ma"}, events[0])
	assert.Equal(t, QueryChangedEvent{Query: "mar"}, events[1])
}

func TestSubscribeAllSeesEverythingInOrder(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var rec recorder
	b.SubscribeAll(rec.handle)

	b.Publish(PipelineStartedEvent{Query: "rk", Filtered: true})
	b.Publish(ResultsPublishedEvent{Query: "rk", Count: 1})
	b.Publish(PipelineSuspendedEvent{})

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	events := rec.snapshot()
	assert.Equal(t, EventPipelineStarted, events[0].Type())
	assert.Equal(t, EventResultsPublished, events[1].Type())
	assert.Equal(t, EventPipelineSuspended, events[2].Type())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var first, second recorder
	unsubscribe := b.Subscribe(EventQueryChanged, first.handle)
	b.Subscribe(EventQueryChanged, second.handle)

	unsubscribe()
	b.Publish(QueryChangedEvent{Query: "x"})

	require.Eventually(t, func() bool { return len(second.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, first.snapshot())
}

func TestHandlerPanicDoesNotStopDispatch(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var rec recorder
	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventError, rec.handle)

	b.Publish(ErrorEvent{Message: "first"})
	b.Publish(ErrorEvent{Message: "second"})

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	b := New(nil)

	var rec recorder
	b.SubscribeAll(rec.handle)
	b.Close()

	b.Publish(QueryChangedEvent{Query: "late"})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestCloseFlushesQueuedEvents(t *testing.T) {
	b := New(nil)

	var rec recorder
	b.SubscribeAll(rec.handle)
	for i := 0; i < 50; i++ {
		b.Publish(DatasetChangedEvent{Count: i})
	}
	b.Close()

	assert.Len(t, rec.snapshot(), 50)
}
