package priority

import "errors"

// ErrEmpty is returned by Dequeue when no elements are queued.
var ErrEmpty = errors.New("priority: queue is empty")

// Priority is the result of a priority function: either a numeric rank
// (lower is served sooner) or an instruction to drop the element from the
// queue instead of ordering it.
type Priority struct {
	value float64
	drop  bool
}

// Value returns a Priority carrying the given numeric rank.
func Value(v float64) Priority {
	return Priority{value: v}
}

// Drop returns the Priority that removes an element from the queue. It is
// distinct from every numeric rank, including infinities.
func Drop() Priority {
	return Priority{drop: true}
}

// IsDrop reports whether the priority marks its element for removal.
func (p Priority) IsDrop() bool {
	return p.drop
}

// Float returns the numeric rank. Only meaningful when IsDrop is false.
func (p Priority) Float() float64 {
	return p.value
}

// Heap implements an indexable min-heap over keyed elements. Keys and
// priorities are derived from elements by the functions supplied at
// construction; the key to slot mapping makes removal and reprioritization
// by key O(log n).
type Heap[K comparable, E any] struct {
	elements   []E
	priorities []float64
	index      map[K]int
	keyOf      func(E) K
	priorityOf func(E) Priority
}

// New creates an empty heap. keyOf must be stable for an element while it is
// queued; priorityOf must be pure and cheap, as it may run once per heap
// operation per element.
func New[K comparable, E any](keyOf func(E) K, priorityOf func(E) Priority) *Heap[K, E] {
	return &Heap[K, E]{
		index:      make(map[K]int),
		keyOf:      keyOf,
		priorityOf: priorityOf,
	}
}

// FromSlice builds a heap from a bulk of elements with a single O(n)
// heapify. Elements with duplicate keys beyond the first, and elements whose
// priority is Drop, are skipped.
func FromSlice[K comparable, E any](keyOf func(E) K, priorityOf func(E) Priority, elems []E) *Heap[K, E] {
	h := New[K, E](keyOf, priorityOf)
	for _, e := range elems {
		key := keyOf(e)
		if _, queued := h.index[key]; queued {
			continue
		}
		p := priorityOf(e)
		if p.IsDrop() {
			continue
		}
		h.index[key] = len(h.elements)
		h.elements = append(h.elements, e)
		h.priorities = append(h.priorities, p.Float())
	}
	h.heapify()
	return h
}

// Len returns the number of queued elements.
func (h *Heap[K, E]) Len() int {
	return len(h.elements)
}

// Queued reports whether an element with the given key is currently queued.
func (h *Heap[K, E]) Queued(key K) bool {
	_, ok := h.index[key]
	return ok
}

// Enqueue inserts an element. It is a no-op when an element with the same
// key is already queued, even if the new element's context or computed
// priority differs (a deliberate dedup policy, not an update), and when the
// element's priority is Drop.
func (h *Heap[K, E]) Enqueue(e E) {
	key := h.keyOf(e)
	if _, queued := h.index[key]; queued {
		return
	}
	p := h.priorityOf(e)
	if p.IsDrop() {
		return
	}
	h.index[key] = len(h.elements)
	h.elements = append(h.elements, e)
	h.priorities = append(h.priorities, p.Float())
	h.up(len(h.elements) - 1)
}

// Dequeue removes and returns the element with the minimum priority among
// all queued elements. Equal priorities are served in heap order, which is
// deterministic for a given insertion history but otherwise unspecified.
// Returns ErrEmpty, without mutating the heap, when nothing is queued.
func (h *Heap[K, E]) Dequeue() (E, error) {
	var zero E
	if len(h.elements) == 0 {
		return zero, ErrEmpty
	}

	root := h.elements[0]
	delete(h.index, h.keyOf(root))

	last := len(h.elements) - 1
	if last > 0 {
		h.elements[0] = h.elements[last]
		h.priorities[0] = h.priorities[last]
		h.index[h.keyOf(h.elements[0])] = 0
	}
	h.elements[last] = zero
	h.elements = h.elements[:last]
	h.priorities = h.priorities[:last]
	if last > 0 {
		h.down(0)
	}

	return root, nil
}

// Reprioritize recomputes the priority of every queued element with the
// priority function. Elements whose recomputed priority is Drop are removed
// and their keys freed; the survivors are rebuilt into heap order with one
// O(n) heapify, since an arbitrary number of priorities may have changed
// non-monotonically.
func (h *Heap[K, E]) Reprioritize() {
	var zero E
	n := 0
	for _, e := range h.elements {
		p := h.priorityOf(e)
		if p.IsDrop() {
			delete(h.index, h.keyOf(e))
			continue
		}
		h.elements[n] = e
		h.priorities[n] = p.Float()
		n++
	}
	for i := n; i < len(h.elements); i++ {
		h.elements[i] = zero
	}
	h.elements = h.elements[:n]
	h.priorities = h.priorities[:n]
	h.heapify()
}

// Clear removes all queued elements.
func (h *Heap[K, E]) Clear() {
	h.elements = nil
	h.priorities = nil
	h.index = make(map[K]int)
}

// heapify restores heap order over the full backing slices with bottom-up
// sift-down in O(n), rebuilding the index map first so that swaps keep it
// consistent.
func (h *Heap[K, E]) heapify() {
	for i, e := range h.elements {
		h.index[h.keyOf(e)] = i
	}
	for i := len(h.elements)/2 - 1; i >= 0; i-- {
		h.down(i)
	}
}

// swap swaps the elements at index i and j and updates the index map.
func (h *Heap[K, E]) swap(i, j int) {
	h.elements[i], h.elements[j] = h.elements[j], h.elements[i]
	h.priorities[i], h.priorities[j] = h.priorities[j], h.priorities[i]
	h.index[h.keyOf(h.elements[i])] = i
	h.index[h.keyOf(h.elements[j])] = j
}

// less compares the priorities at index i and j.
func (h *Heap[K, E]) less(i, j int) bool {
	return h.priorities[i] < h.priorities[j]
}

// up moves the element at index i up to its proper position.
func (h *Heap[K, E]) up(i int) {
	for {
		parent := (i - 1) / 2
		if parent == i || !h.less(i, parent) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

// down moves the element at index i down to its proper position.
func (h *Heap[K, E]) down(i int) {
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < len(h.elements) && h.less(left, smallest) {
			smallest = left
		}
		if right < len(h.elements) && h.less(right, smallest) {
			smallest = right
		}

		if smallest == i {
			break
		}

		h.swap(i, smallest)
		i = smallest
	}
}
