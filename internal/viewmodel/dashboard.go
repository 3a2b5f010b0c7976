package viewmodel

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/boldserve/adminconsole/internal/apperr"
)

const CountError = "Unavailable"

// Counter is one dashboard tile.
type Counter struct {
	Label string
	Link  string
	Count func(ctx context.Context) (int, error)
}

// Tile is the rendered state of one Counter.
type Tile struct {
	Label   string `json:"label"`
	Link    string `json:"link"`
	Value   int    `json:"value"`
	Loaded  bool   `json:"loaded"`
	Message string `json:"message,omitempty"`
}

// Dashboard loads all counters concurrently on the runner; each tile fails
// on its own.
type Dashboard struct {
	counters []Counter
	runner   Runner

	mu        sync.Mutex
	tiles     []Tile
	pending   int
	mounted   bool
	unmounted bool
	cancel    context.CancelFunc
	settled   chan struct{}
}

func NewDashboard(runner Runner, counters ...Counter) *Dashboard {
	if runner == nil {
		runner = GoRunner{}
	}
	tiles := make([]Tile, len(counters))
	for i, c := range counters {
		tiles[i] = Tile{Label: c.Label, Link: c.Link}
	}
	return &Dashboard{counters: counters, runner: runner, tiles: tiles, settled: make(chan struct{})}
}

func (d *Dashboard) Mount(parent context.Context) bool {
	d.mu.Lock()
	if d.mounted || d.unmounted {
		d.mu.Unlock()
		return false
	}
	d.mounted = true
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.pending = len(d.counters)
	if d.pending == 0 {
		cancel()
		close(d.settled)
	}
	d.mu.Unlock()

	for i := range d.counters {
		i := i
		task := func() {
			n, err := d.counters[i].Count(ctx)
			d.set(i, n, err)
		}
		if err := d.runner.Submit(task); err != nil {
			zap.L().Error("dashboard count not scheduled", zap.String("tile", d.counters[i].Label), zap.Error(err))
			d.set(i, 0, errors.Wrap(err, "schedule count"))
		}
	}
	return true
}

func (d *Dashboard) set(i, n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending--
	if d.pending == 0 {
		d.cancel()
		if !d.unmounted {
			close(d.settled)
		}
	}
	if d.unmounted {
		return
	}
	t := &d.tiles[i]
	t.Loaded = true
	if err != nil {
		t.Message = apperr.Message(err, CountError)
		zap.L().Warn("dashboard count failed", zap.String("tile", t.Label), zap.Error(err))
		return
	}
	t.Value = n
}

func (d *Dashboard) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unmounted {
		return
	}
	d.unmounted = true
	if d.cancel != nil {
		d.cancel()
	}
	select {
	case <-d.settled:
	default:
		close(d.settled)
	}
}

func (d *Dashboard) Tiles() []Tile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Tile(nil), d.tiles...)
}

// Await waits for every tile to load or ctx to end.
func (d *Dashboard) Await(ctx context.Context) []Tile {
	select {
	case <-d.settled:
	case <-ctx.Done():
	}
	return d.Tiles()
}
