package common

import (
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const NA = "N/A"

var (
	idNode *snowflake.Node
	idOnce sync.Once
)

func node() *snowflake.Node {
	idOnce.Do(func() {
		n, err := snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
		idNode = n
	})
	return idNode
}

// UUIDint64 returns a time-ordered unique id
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// RequestID returns a unique id for tagging outgoing requests
func RequestID() string {
	return node().Generate().Base36()
}

// IfEmptyStr returns def when src is blank
func IfEmptyStr(src string, def string) string {
	if strings.TrimSpace(src) == "" {
		return def
	}
	return src
}
