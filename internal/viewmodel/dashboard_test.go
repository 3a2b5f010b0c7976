package viewmodel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boldserve/adminconsole/internal/apperr"
)

func TestDashboardTilesFailIndependently(t *testing.T) {
	d := NewDashboard(GoRunner{},
		Counter{Label: "Products", Link: "/products", Count: func(context.Context) (int, error) { return 4, nil }},
		Counter{Label: "Users", Link: "/users", Count: func(context.Context) (int, error) {
			return 0, apperr.Timeout(context.DeadlineExceeded)
		}},
		Counter{Label: "Orders", Link: "/orders", Count: func(context.Context) (int, error) {
			return 0, apperr.Malformed(nil, nil)
		}},
	)
	require.True(t, d.Mount(context.Background()))
	assert.False(t, d.Mount(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	tiles := d.Await(ctx)
	require.Len(t, tiles, 3)

	assert.Equal(t, 4, tiles[0].Value)
	assert.Empty(t, tiles[0].Message)
	assert.Equal(t, apperr.TimeoutMessage, tiles[1].Message)
	assert.Equal(t, CountError, tiles[2].Message)
	for _, tile := range tiles {
		assert.True(t, tile.Loaded)
	}
}

func TestDashboardUnmountCancels(t *testing.T) {
	stopped := make(chan struct{})
	d := NewDashboard(nil, Counter{Label: "Products", Count: func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(stopped)
		return 0, ctx.Err()
	}})
	d.Mount(context.Background())
	d.Unmount()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("count was not cancelled")
	}
	assert.False(t, d.Tiles()[0].Loaded)
	assert.False(t, d.Mount(context.Background()))
}

// countingRunner runs tasks on goroutines and counts them.
type countingRunner struct {
	n *int32
}

func (r countingRunner) Submit(task func()) error {
	atomic.AddInt32(r.n, 1)
	go task()
	return nil
}

func TestDashboardRunsTilesOnRunner(t *testing.T) {
	var submitted int32
	count := func(context.Context) (int, error) { return 1, nil }
	d := NewDashboard(countingRunner{n: &submitted},
		Counter{Label: "Products", Count: count},
		Counter{Label: "Users", Count: count},
	)
	d.Mount(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	tiles := d.Await(ctx)
	assert.EqualValues(t, 2, atomic.LoadInt32(&submitted))
	for _, tile := range tiles {
		assert.True(t, tile.Loaded)
		assert.Equal(t, 1, tile.Value)
	}
}

func TestDashboardRejectedTileReportsUnavailable(t *testing.T) {
	d := NewDashboard(failingRunner{},
		Counter{Label: "Products", Count: func(context.Context) (int, error) { return 1, nil }},
	)
	d.Mount(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	tiles := d.Await(ctx)
	require.NoError(t, ctx.Err())
	assert.True(t, tiles[0].Loaded)
	assert.Equal(t, CountError, tiles[0].Message)
}

func TestDashboardWithoutCountersSettles(t *testing.T) {
	d := NewDashboard(nil)
	d.Mount(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Empty(t, d.Await(ctx))
	require.NoError(t, ctx.Err())
}
