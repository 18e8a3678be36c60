package tile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetlabs/ol3/tile"
)

func TestCoordKey(t *testing.T) {
	tests := []struct {
		coord tile.Coord
		want  string
	}{
		{tile.Coord{Z: 0, X: 0, Y: 0}, "0/0/0"},
		{tile.Coord{Z: 4, X: 3, Y: 2}, "4/3/2"},
		{tile.Coord{Z: 12, X: 2048, Y: 1365}, "12/2048/1365"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.coord.Key())
		assert.Equal(t, tt.want, tt.coord.String())
	}
}

func TestStateTerminal(t *testing.T) {
	assert.False(t, tile.Idle.Terminal())
	assert.False(t, tile.Loading.Terminal())
	assert.True(t, tile.Loaded.Terminal())
	assert.True(t, tile.Error.Terminal())
	assert.True(t, tile.Empty.Terminal())
}

// waitTerminal subscribes and blocks until the tile settles.
func waitTerminal(t *testing.T, tl *tile.Tile) {
	t.Helper()
	done := make(chan struct{}, 1)
	remove := tl.Subscribe(func() {
		select {
		case done <- struct{}{}:
		default:
		}
	})
	defer remove()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tile never reached a terminal state")
	}
}

func TestTileLoad(t *testing.T) {
	tests := []struct {
		name      string
		fetch     tile.FetchFunc
		wantState tile.State
		wantData  []byte
		wantErr   bool
	}{
		{
			name: "successful fetch",
			fetch: func(_ context.Context, _ tile.Coord) ([]byte, error) {
				return []byte("png bytes"), nil
			},
			wantState: tile.Loaded,
			wantData:  []byte("png bytes"),
		},
		{
			name: "failed fetch",
			fetch: func(_ context.Context, _ tile.Coord) ([]byte, error) {
				return nil, errors.New("boom")
			},
			wantState: tile.Error,
			wantErr:   true,
		},
		{
			name: "no content",
			fetch: func(_ context.Context, _ tile.Coord) ([]byte, error) {
				return nil, nil
			},
			wantState: tile.Empty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := tile.New(tile.Coord{Z: 3, X: 1, Y: 2}, tt.fetch)
			require.Equal(t, tile.Idle, tl.State())

			tl.Load()
			waitTerminal(t, tl)

			assert.Equal(t, tt.wantState, tl.State())
			assert.Equal(t, tt.wantData, tl.Data())
			if tt.wantErr {
				assert.Error(t, tl.Err())
			} else {
				assert.NoError(t, tl.Err())
			}
		})
	}
}

func TestTileLoadIdempotent(t *testing.T) {
	fetches := make(chan struct{}, 4)
	release := make(chan struct{})
	tl := tile.New(tile.Coord{Z: 1, X: 0, Y: 0}, func(_ context.Context, _ tile.Coord) ([]byte, error) {
		fetches <- struct{}{}
		<-release
		return []byte("x"), nil
	})

	tl.Load()
	tl.Load() // second call must not start a second fetch
	assert.Equal(t, tile.Loading, tl.State())

	close(release)
	waitTerminal(t, tl)

	tl.Load() // terminal: no-op
	assert.Len(t, fetches, 1)
	assert.Equal(t, tile.Loaded, tl.State())
}

func TestTileSubscribeAfterTerminal(t *testing.T) {
	tl := tile.New(tile.Coord{Z: 1, X: 1, Y: 1}, func(_ context.Context, _ tile.Coord) ([]byte, error) {
		return []byte("x"), nil
	})
	tl.Load()
	waitTerminal(t, tl)

	// A late subscriber still gets notified once.
	waitTerminal(t, tl)
}

func TestTileSubscribeRemove(t *testing.T) {
	release := make(chan struct{})
	tl := tile.New(tile.Coord{Z: 1, X: 1, Y: 1}, func(_ context.Context, _ tile.Coord) ([]byte, error) {
		<-release
		return []byte("x"), nil
	})

	fired := make(chan struct{}, 1)
	remove := tl.Subscribe(func() { fired <- struct{}{} })

	tl.Load()
	remove()
	close(release)
	waitTerminal(t, tl)

	select {
	case <-fired:
		t.Fatal("removed listener was invoked")
	default:
	}
}
