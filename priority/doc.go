// Package priority implements an indexable generic min-heap over keyed
// elements. Keys and priorities are not supplied alongside the elements by
// the caller; they are derived by a key function and a priority function
// given at construction, and the heap keeps a key-to-slot map so that
// elements can be found, deduplicated, and reprioritized without scanning.
//
// The heap is a binary min-heap: lower priority values are dequeued sooner.
//
// Key features:
//   - Generic implementation supporting any comparable key type and any
//     element type
//   - O(log n) insertion and extraction
//   - Deduplicated insertion: a key can only be queued once at a time
//   - O(n) bulk reprioritization with drop semantics
//
// A priority function returns a Priority, which is either a numeric rank or
// the distinguished Drop result. Drop is a tagged variant rather than a
// reserved numeric value, so every float64 (including infinities) remains a
// legitimate rank. An element whose priority computes to Drop is removed
// from the queue (on Reprioritize) or never inserted (on Enqueue).
//
// Basic usage:
//
//	h := priority.New(
//	    func(s string) string { return s },
//	    func(s string) priority.Priority { return priority.Value(float64(len(s))) },
//	)
//
//	h.Enqueue("tile")
//	h.Enqueue("t")
//
//	e, err := h.Dequeue() // "t"
//
// Reprioritize re-runs the priority function over everything queued, which
// is how a caller responds to its ranking inputs changing (for tile loading,
// a viewport move): elements that are no longer wanted return Drop and fall
// out, the rest are re-ranked in one O(n) rebuild.
//
// The zero Heap is not usable; construct one with New or FromSlice. The heap
// carries no internal locking: callers in concurrent settings must serialize
// access externally.
package priority
