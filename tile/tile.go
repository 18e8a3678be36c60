// Package tile provides tile coordinates, the tile load-state machine, and a
// concrete asynchronously loadable tile driven by a caller-supplied fetch
// function.
package tile

import (
	"context"
	"fmt"
	"sync"
)

// State is the load state of a tile.
type State int

const (
	// Idle tiles have not started loading.
	Idle State = iota
	// Loading tiles have an outstanding fetch.
	Loading
	// Loaded tiles fetched successfully and carry data.
	Loaded
	// Error tiles failed to fetch.
	Error
	// Empty tiles fetched successfully but have no content.
	Empty
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == Loaded || s == Error || s == Empty
}

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// Coord addresses a tile by zoom level and column/row.
type Coord struct {
	Z, X, Y int
}

// Key returns the canonical "z/x/y" form of the coordinate, suitable as a
// stable dedup key.
func (c Coord) Key() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

func (c Coord) String() string {
	return c.Key()
}

// FetchFunc retrieves the raw bytes for one tile. Returning no bytes and no
// error marks the tile Empty.
type FetchFunc func(ctx context.Context, c Coord) ([]byte, error)

// Tile is an asynchronously loadable tile. Load starts the fetch on its own
// goroutine and the tile settles into exactly one terminal state; listeners
// registered with Subscribe are notified when it does.
type Tile struct {
	coord Coord
	fetch FetchFunc

	mu        sync.Mutex
	state     State
	data      []byte
	err       error
	listeners map[int]func()
	nextID    int
}

// New creates an Idle tile for the given coordinate.
func New(coord Coord, fetch FetchFunc) *Tile {
	return &Tile{
		coord:     coord,
		fetch:     fetch,
		listeners: make(map[int]func()),
	}
}

// Coord returns the tile's coordinate.
func (t *Tile) Coord() Coord {
	return t.coord
}

// State returns the current load state.
func (t *Tile) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Data returns the fetched bytes. Nil unless the tile is Loaded.
func (t *Tile) Data() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data
}

// Err returns the fetch error. Nil unless the tile is Error.
func (t *Tile) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Load starts the asynchronous fetch and returns immediately. Only an Idle
// tile starts loading; all other states make Load a no-op.
func (t *Tile) Load() {
	t.mu.Lock()
	if t.state != Idle {
		t.mu.Unlock()
		return
	}
	t.state = Loading
	t.mu.Unlock()

	go t.run()
}

func (t *Tile) run() {
	data, err := t.fetch(context.Background(), t.coord)

	t.mu.Lock()
	switch {
	case err != nil:
		t.state = Error
		t.err = err
	case len(data) == 0:
		t.state = Empty
	default:
		t.state = Loaded
		t.data = data
	}
	fns := make([]func(), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	// Listeners run without the tile lock held, so they may call back into
	// the tile or into a scheduler holding its own lock.
	for _, fn := range fns {
		fn()
	}
}

// Subscribe registers fn to run when the tile reaches a terminal state, and
// returns a func that removes the registration. A tile that is already
// terminal notifies the new listener once, on a fresh goroutine.
func (t *Tile) Subscribe(fn func()) (remove func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	settled := t.state.Terminal()
	t.mu.Unlock()

	if settled {
		go fn()
	}

	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}
