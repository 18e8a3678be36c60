// Package pebble persists raw tile bytes in a Pebble key-value store, keyed
// by tile coordinate so that a zoom level occupies one contiguous key range.
package pebble

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/planetlabs/ol3/tile"
)

// ErrNotFound is returned by Get for a coordinate with no stored tile.
var ErrNotFound = errors.New("pebble: tile not found")

// Options configures the store.
type Options struct {
	Path         string
	CacheSize    int64
	MaxOpenFiles int
}

// Store persists raw tile bytes keyed by coordinate.
type Store struct {
	db *pebble.DB
}

// New opens (creating if necessary) a store at opts.Path.
func New(opts Options) (*Store, error) {
	pebbleOpts := &pebble.Options{
		Cache:        pebble.NewCache(opts.CacheSize),
		MaxOpenFiles: opts.MaxOpenFiles,
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, err
	}

	db, err := pebble.Open(opts.Path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("pebble: open %s: %w", opts.Path, err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// coordKey lays a coordinate out as [z uint8][x uint32][y uint32], big
// endian, so one zoom level is one contiguous key range.
func coordKey(c tile.Coord) []byte {
	key := make([]byte, 9)
	key[0] = uint8(c.Z)
	binary.BigEndian.PutUint32(key[1:5], uint32(c.X))
	binary.BigEndian.PutUint32(key[5:9], uint32(c.Y))
	return key
}

func zoomBounds(z int) (lo, hi []byte) {
	lo = make([]byte, 9)
	lo[0] = uint8(z)
	hi = make([]byte, 9)
	hi[0] = uint8(z) + 1
	return lo, hi
}

// Put stores the bytes for one tile, replacing any previous value.
func (s *Store) Put(ctx context.Context, c tile.Coord, data []byte) error {
	if err := s.db.Set(coordKey(c), data, pebble.Sync); err != nil {
		return fmt.Errorf("pebble: put %s: %w", c, err)
	}
	return nil
}

// Get returns the stored bytes for one tile, or ErrNotFound.
func (s *Store) Get(ctx context.Context, c tile.Coord) ([]byte, error) {
	value, closer, err := s.db.Get(coordKey(c))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pebble: get %s: %w", c, err)
	}
	defer closer.Close()

	data := make([]byte, len(value))
	copy(data, value)
	return data, nil
}

// Has reports whether a tile is stored for the coordinate.
func (s *Store) Has(ctx context.Context, c tile.Coord) (bool, error) {
	_, closer, err := s.db.Get(coordKey(c))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pebble: has %s: %w", c, err)
	}
	closer.Close()
	return true, nil
}

// Delete removes the stored bytes for one tile, if any.
func (s *Store) Delete(ctx context.Context, c tile.Coord) error {
	if err := s.db.Delete(coordKey(c), pebble.Sync); err != nil {
		return fmt.Errorf("pebble: delete %s: %w", c, err)
	}
	return nil
}

// DeleteZoom removes every tile stored at zoom level z.
func (s *Store) DeleteZoom(ctx context.Context, z int) error {
	lo, hi := zoomBounds(z)
	if err := s.db.DeleteRange(lo, hi, pebble.Sync); err != nil {
		return fmt.Errorf("pebble: delete zoom %d: %w", z, err)
	}
	return nil
}

// Fetch wraps next with a write-through cache: hits are served from the
// store, misses are delegated and non-empty results persisted.
func (s *Store) Fetch(next tile.FetchFunc) tile.FetchFunc {
	return func(ctx context.Context, c tile.Coord) ([]byte, error) {
		data, err := s.Get(ctx, c)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		data, err = next(ctx, c)
		if err != nil || len(data) == 0 {
			return data, err
		}
		if err := s.Put(ctx, c, data); err != nil {
			return nil, err
		}
		return data, nil
	}
}
