package tilequeue

import (
	"sync"

	"github.com/planetlabs/ol3/priority"
	"github.com/planetlabs/ol3/tile"
)

// Loadable is the contract an item must satisfy to be scheduled.
type Loadable interface {
	// State returns the current load state.
	State() tile.State
	// Load starts the asynchronous load and returns immediately. It must
	// be a no-op unless the item is Idle.
	Load()
	// Subscribe registers fn to run when the item reaches a terminal state
	// (Loaded, Error or Empty) and returns a func that cancels the
	// registration. fn must not be invoked with internal item locks held.
	Subscribe(fn func()) (remove func())
}

// Element pairs a loadable item with the context its priority is computed
// from. The queue owns an element while it is queued; the item itself is
// only borrowed for the duration of its load.
type Element struct {
	Tile       Loadable
	SourceKey  string
	Center     [2]float64
	Resolution float64
}

// PriorityFunc ranks an element; lower values load sooner. Returning
// priority.Drop() excludes the element from scheduling. It must be pure and
// cheap: it runs once per heap operation per element.
type PriorityFunc func(Element) priority.Priority

// KeyFunc derives the dedup key for an element. It must be stable for the
// element's item while the element is queued.
type KeyFunc func(Element) string

// Queue schedules tile loads in priority order under a bounded in-flight
// budget. Loads are admitted by drain passes triggered by Enqueue,
// ConfigureBudget, and each load completion; every pass starts at most
// MaxNewPerPass new loads while keeping at most MaxInFlight outstanding.
//
// All public operations are serialized by an internal mutex; asynchrony
// exists only at the Load/completion boundary.
type Queue struct {
	priorityOf PriorityFunc
	keyOf      KeyFunc
	onDone     func()

	mu            sync.Mutex
	heap          *priority.Heap[string, Element]
	maxInFlight   int
	maxNewPerPass int
	loading       int
	subs          map[string]func()
	closed        bool
}

// New creates a queue. onDone, which may be nil, is invoked once per load
// reaching a terminal state (Loaded, Error and Empty alike), after capacity
// has been freed and before the next drain pass; callers typically use it to
// request a re-render. onDone must not panic.
func New(priorityOf PriorityFunc, keyOf KeyFunc, onDone func(), opts Options) *Queue {
	defaults := DefaultOptions()
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = defaults.MaxInFlight
	}
	if opts.MaxNewPerPass <= 0 {
		opts.MaxNewPerPass = defaults.MaxNewPerPass
	}

	return &Queue{
		priorityOf:    priorityOf,
		keyOf:         keyOf,
		onDone:        onDone,
		heap:          priority.New[string, Element](keyOf, priorityOf),
		maxInFlight:   opts.MaxInFlight,
		maxNewPerPass: opts.MaxNewPerPass,
		subs:          make(map[string]func()),
	}
}

// Enqueue inserts elements into the queue and runs one drain pass, which may
// immediately start loads up to the budget. An element whose key is already
// queued is ignored; an element whose item is already loading is accepted
// but will be discarded, uncounted, when it surfaces in a drain pass.
func (q *Queue) Enqueue(elems ...Element) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	for _, e := range elems {
		q.heap.Enqueue(e)
	}
	q.drain()
}

// ConfigureBudget replaces both throttle parameters and runs a drain pass.
// Safe to call at any time, including while loads are outstanding; already
// started loads are unaffected by a lowered budget.
func (q *Queue) ConfigureBudget(maxInFlight, maxNewPerPass int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.maxInFlight = maxInFlight
	q.maxNewPerPass = maxNewPerPass
	q.drain()
}

// Reprioritize recomputes the priority of every queued (not yet started)
// element, removing those whose priority is now priority.Drop().
func (q *Queue) Reprioritize() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.heap.Reprioritize()
}

// QueuedCount returns the number of elements waiting in the queue.
func (q *Queue) QueuedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}

// InFlightCount returns the number of loads currently outstanding.
func (q *Queue) InFlightCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loading
}

// Close releases every outstanding completion subscription and clears the
// queue. Loads already started run to completion in their items, but this
// queue no longer observes them and never invokes its callback again.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	removes := make([]func(), 0, len(q.subs))
	for _, remove := range q.subs {
		removes = append(removes, remove)
	}
	q.subs = make(map[string]func())
	q.loading = 0
	q.heap.Clear()
	q.mu.Unlock()

	for _, remove := range removes {
		remove()
	}
}

// drain admits queued elements into the in-flight state until the heap is
// exhausted, the in-flight budget is reached, or the per-pass cap on new
// loads is hit. Callers must hold q.mu.
func (q *Queue) drain() {
	started := 0
	for q.loading < q.maxInFlight && started < q.maxNewPerPass && q.heap.Len() > 0 {
		e, err := q.heap.Dequeue()
		if err != nil {
			return
		}
		// Priorities computed at enqueue time go stale; re-filter here.
		if q.priorityOf(e).IsDrop() {
			continue
		}
		// An item already loading or terminal is accounted for elsewhere.
		if e.Tile.State() != tile.Idle {
			continue
		}

		key := q.keyOf(e)
		q.subs[key] = e.Tile.Subscribe(q.completion(key, e.Tile))
		e.Tile.Load()
		q.loading++
		started++
	}
}

// completion returns the signal handler for one in-flight item. The
// subscription registry entry is the exactly-once guard: a signal for a key
// no longer registered (already handled, or the queue was closed) is
// ignored.
func (q *Queue) completion(key string, t Loadable) func() {
	return func() {
		if !t.State().Terminal() {
			return
		}

		q.mu.Lock()
		remove, ok := q.subs[key]
		if !ok {
			q.mu.Unlock()
			return
		}
		delete(q.subs, key)
		q.loading--
		q.mu.Unlock()

		remove()
		if q.onDone != nil {
			q.onDone()
		}

		q.mu.Lock()
		if !q.closed {
			q.drain()
		}
		q.mu.Unlock()
	}
}
