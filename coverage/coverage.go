// Package coverage tracks which tile coordinates are loaded, ordered so that
// one zoom level can be scanned or pruned as a contiguous range.
package coverage

import (
	"math"
	"sync"

	"github.com/google/btree"

	"github.com/planetlabs/ol3/tile"
)

// Set is a sorted, concurrency-safe set of tile coordinates. Load completion
// callbacks typically Add to it; render and eviction passes scan it.
type Set struct {
	mu   sync.Mutex
	tree *btree.BTreeG[tile.Coord]
}

func less(a, b tile.Coord) bool {
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// New creates an empty set.
func New() *Set {
	return &Set{tree: btree.NewG(2, less)}
}

// Add records a coordinate as loaded.
func (s *Set) Add(c tile.Coord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.ReplaceOrInsert(c)
}

// Remove forgets a coordinate, reporting whether it was present.
func (s *Set) Remove(c tile.Coord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tree.Delete(c)
	return ok
}

// Contains reports whether the coordinate is recorded.
func (s *Set) Contains(c tile.Coord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tree.Get(c)
	return ok
}

// Len returns the number of recorded coordinates.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Len()
}

func zoomBounds(z int) (lo, hi tile.Coord) {
	lo = tile.Coord{Z: z, X: math.MinInt, Y: math.MinInt}
	hi = tile.Coord{Z: z + 1, X: math.MinInt, Y: math.MinInt}
	return lo, hi
}

// AscendZoom visits every coordinate at zoom z in (X, Y) order until fn
// returns false. fn must not call back into the set.
func (s *Set) AscendZoom(z int, fn func(tile.Coord) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lo, hi := zoomBounds(z)
	s.tree.AscendRange(lo, hi, func(c tile.Coord) bool {
		return fn(c)
	})
}

// PruneZoom removes every coordinate at zoom z for which keep returns false
// and returns how many were removed. keep must not call back into the set.
func (s *Set) PruneZoom(z int, keep func(tile.Coord) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []tile.Coord
	lo, hi := zoomBounds(z)
	s.tree.AscendRange(lo, hi, func(c tile.Coord) bool {
		if !keep(c) {
			stale = append(stale, c)
		}
		return true
	})
	for _, c := range stale {
		s.tree.Delete(c)
	}
	return len(stale)
}
