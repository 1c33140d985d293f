package id

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Only the first call has any effect; later calls return the first result.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	if err == nil && node == nil {
		return fmt.Errorf("snowflake node %d not initialized", nodeID)
	}
	return err
}

// New generates a new time-ordered int64 record ID.
// Records are created client-side, so IDs must be unique across every
// running client; the node ID is what keeps them apart.
func New() int64 {
	return node.Generate().Int64()
}

// Parse converts a decimal path or query parameter into a record ID.
func Parse(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return v, nil
}
