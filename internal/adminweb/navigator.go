package adminweb

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Screen is anything the navigator can mount.
type Screen interface {
	Mount(ctx context.Context) bool
	Unmount()
}

// Navigator owns the one screen the operator is looking at. Opening a
// different screen unmounts the current one, so its pending load is
// cancelled and its late result ignored.
type Navigator struct {
	root context.Context

	mu     sync.Mutex
	kind   string
	key    string
	screen Screen
}

func NewNavigator(root context.Context) *Navigator {
	return &Navigator{root: root}
}

// Open returns the mounted screen for key, building and mounting a new one
// when a different screen (or nothing) is current.
func (n *Navigator) Open(kind, key string, build func() Screen) Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.screen != nil && n.key == key {
		return n.screen
	}
	return n.replaceLocked(kind, key, build)
}

// Reload remounts key from scratch.
func (n *Navigator) Reload(kind, key string, build func() Screen) Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.replaceLocked(kind, key, build)
}

func (n *Navigator) replaceLocked(kind, key string, build func() Screen) Screen {
	if n.screen != nil {
		zap.L().Debug("screen unmounted", zap.String("screen", n.key))
		n.screen.Unmount()
	}
	n.kind, n.key = kind, key
	n.screen = build()
	n.screen.Mount(n.root)
	return n.screen
}

// Current returns the mounted screen if it is of the given kind.
func (n *Navigator) Current(kind string) (Screen, string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.screen == nil || n.kind != kind {
		return nil, "", false
	}
	return n.screen, n.key, true
}

// CloseAll unmounts whatever is showing.
func (n *Navigator) CloseAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.screen != nil {
		n.screen.Unmount()
	}
	n.screen, n.kind, n.key = nil, "", ""
}
