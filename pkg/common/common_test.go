package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDint64Unique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := UUIDint64()
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.NotEqual(t, RequestID(), RequestID())
}

func TestIfEmptyStr(t *testing.T) {
	assert.Equal(t, NA, IfEmptyStr("  ", NA))
	assert.Equal(t, "x", IfEmptyStr("x", NA))
}
