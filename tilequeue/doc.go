// Package tilequeue schedules asynchronous tile loads in priority order
// under a bounded concurrency budget.
//
// A Queue wraps an indexable priority heap (package priority) with admission
// control. Producers enqueue elements — a loadable tile plus the viewport
// context its priority is computed from — and the queue opportunistically
// drains the most urgent ones into the in-flight state:
//
//	enqueue -> heap insert (deduplicated by key)
//	        -> drain: start loads while under budget
//	        -> completion signal: free capacity, notify, drain again
//
// Two throttles shape admission. MaxInFlight bounds steady-state
// concurrency; MaxNewPerPass bounds how many new loads one drain pass may
// start, so a burst of enqueues (a viewport pan) cannot saturate the fetch
// and decode path all at once.
//
// When the viewport or application state changes, Reprioritize re-ranks
// everything still queued with the caller's priority function; elements the
// function now answers priority.Drop() for fall out of the queue entirely.
// Items whose loads have already started are not affected.
//
// The queue never retries: a load that ends in Error or Empty frees capacity
// exactly like Loaded, and retry policy belongs to the caller, which may
// enqueue a fresh item under the same key once the old one is no longer
// queued.
//
// Basic usage:
//
//	q := tilequeue.New(priorityFn, keyFn, requestRender, tilequeue.DefaultOptions())
//	q.Enqueue(elems...)
//	...
//	q.Reprioritize() // viewport moved
//	q.Close()        // release completion subscriptions on teardown
package tilequeue
