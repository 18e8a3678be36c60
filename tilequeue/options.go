package tilequeue

// Options defines the load budget for a Queue.
type Options struct {
	// MaxInFlight caps how many loads may be outstanding at once.
	MaxInFlight int
	// MaxNewPerPass caps how many new loads a single drain pass may start,
	// smoothing admission when bursts of elements arrive together.
	MaxNewPerPass int
}

// DefaultOptions returns the default budget.
func DefaultOptions() Options {
	return Options{
		MaxInFlight:   16,
		MaxNewPerPass: 2,
	}
}
