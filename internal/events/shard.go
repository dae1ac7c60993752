// Package events implements the consistent-hash topic sharder and the
// wire envelopes exchanged over the event bus.
package events

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/bits"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
)

var (
	ErrZeroShards     = errors.New("events: shard count must be greater than zero")
	ErrNotPowerOfTwo  = errors.New("events: shard count must be a power of two")
	ErrEmptyPrefix    = errors.New("events: topic prefix cannot be empty")
)

// ShardRouter maps a channel id to one of N topics named "<prefix>.<i>".
// N must be a power of two so shard selection reduces to a bitmask instead
// of a modulo. The hash is FNV-1a, fixed across processes and Go versions
// (unlike a language runtime's built-in map hash, which is randomized per
// process) so every instance routes the same channel to the same shard.
type ShardRouter struct {
	numShards uint32
	prefix    string
}

func NewShardRouter(numShards uint32, prefix string) (*ShardRouter, error) {
	if numShards == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrZeroShards, numShards)
	}
	if bits.OnesCount32(numShards) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNotPowerOfTwo, numShards)
	}
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}
	return &ShardRouter{numShards: numShards, prefix: prefix}, nil
}

// ShardFor returns the topic name for the shard that owns channelID.
func (r *ShardRouter) ShardFor(channelID channel.ID) string {
	return fmt.Sprintf("%s.%d", r.prefix, r.shardIndex(channelID))
}

func (r *ShardRouter) shardIndex(channelID channel.ID) uint32 {
	h := fnv.New64a()
	_, _ = h.Write(channelID.UUID[:])
	return uint32(h.Sum64()) & (r.numShards - 1)
}

// AllShards enumerates every shard's topic name, in order. A fan-out
// consumer subscribes to all of them.
func (r *ShardRouter) AllShards() []string {
	shards := make([]string, r.numShards)
	for i := uint32(0); i < r.numShards; i++ {
		shards[i] = fmt.Sprintf("%s.%d", r.prefix, i)
	}
	return shards
}

func (r *ShardRouter) NumShards() uint32 { return r.numShards }
