package adminweb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubScreen struct {
	mounts   int
	unmounts int
}

func (s *stubScreen) Mount(context.Context) bool {
	s.mounts++
	return s.mounts == 1
}

func (s *stubScreen) Unmount() {
	s.unmounts++
}

func TestNavigatorLifecycle(t *testing.T) {
	nav := NewNavigator(context.Background())
	a := &stubScreen{}
	b := &stubScreen{}

	got := nav.Open("products", "products", func() Screen { return a })
	assert.Same(t, a, got)
	assert.Equal(t, 1, a.mounts)

	// same key keeps the mounted screen
	got = nav.Open("products", "products", func() Screen { return &stubScreen{} })
	assert.Same(t, a, got)
	assert.Equal(t, 1, a.mounts)

	nav.Open("users", "users", func() Screen { return b })
	assert.Equal(t, 1, a.unmounts)
	assert.Equal(t, 1, b.mounts)

	_, _, ok := nav.Current("products")
	assert.False(t, ok)
	cur, key, ok := nav.Current("users")
	assert.True(t, ok)
	assert.Equal(t, "users", key)
	assert.Same(t, b, cur)

	nav.CloseAll()
	assert.Equal(t, 1, b.unmounts)
	_, _, ok = nav.Current("users")
	assert.False(t, ok)
}

func TestNavigatorReload(t *testing.T) {
	nav := NewNavigator(context.Background())
	a := &stubScreen{}
	b := &stubScreen{}
	nav.Open("orders", "orders", func() Screen { return a })
	got := nav.Reload("orders", "orders", func() Screen { return b })

	assert.Same(t, b, got)
	assert.Equal(t, 1, a.unmounts)
	assert.Equal(t, 1, b.mounts)
}
