package utilities

import (
	"errors"
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// ErrInvalidID is returned by ParseID for strings that are not snowflake ids.
var ErrInvalidID = errors.New("invalid id")

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// IDGenerator hands out snowflake ids from a single node.
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator creates a generator for the given node id (0..1023).
func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &IDGenerator{node: node}, nil
}

// NodeFromEnv reads SNOWFLAKE_NODE, defaulting to node 1 when it is
// missing or unparsable.
func NodeFromEnv() int64 {
	nodeEnv := os.Getenv("SNOWFLAKE_NODE")
	if nodeEnv == "" {
		return 1
	}
	nodeID, err := strconv.ParseInt(nodeEnv, 10, 64)
	if err != nil {
		return 1
	}
	return nodeID
}

// Next returns a new id.
func (g *IDGenerator) Next() int64 {
	return g.node.Generate().Int64()
}

// ParseID parses the decimal form of a snowflake id. Zero and negative
// values are rejected.
func ParseID(s string) (int64, error) {
	id, err := snowflake.ParseString(s)
	if err != nil || id.Int64() <= 0 {
		return 0, ErrInvalidID
	}
	return id.Int64(), nil
}

// FormatID renders an id the way ParseID expects it.
func FormatID(id int64) string {
	return snowflake.ID(id).String()
}
