package priority

import "fmt"

// Verify checks the heap-order invariant and the index-map consistency
// invariant over the full structure. It exists for tests only; production
// callers never need it.
func (h *Heap[K, E]) Verify() error {
	if len(h.elements) != len(h.priorities) {
		return fmt.Errorf("priority: %d elements but %d priorities", len(h.elements), len(h.priorities))
	}
	for i := 1; i < len(h.priorities); i++ {
		parent := (i - 1) / 2
		if h.priorities[parent] > h.priorities[i] {
			return fmt.Errorf("priority: heap order violated at index %d: parent %g > child %g",
				i, h.priorities[parent], h.priorities[i])
		}
	}
	if len(h.index) != len(h.elements) {
		return fmt.Errorf("priority: index map has %d entries for %d elements", len(h.index), len(h.elements))
	}
	for key, i := range h.index {
		if i < 0 || i >= len(h.elements) {
			return fmt.Errorf("priority: index for key %v out of range: %d", key, i)
		}
		if got := h.keyOf(h.elements[i]); got != key {
			return fmt.Errorf("priority: index for key %v points at element keyed %v", key, got)
		}
	}
	return nil
}

// Heapify exposes the O(n) bottom-up rebuild for tests.
func (h *Heap[K, E]) Heapify() {
	h.heapify()
}
