package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
)

func TestShardConsistency(t *testing.T) {
	r, err := NewShardRouter(16, "chat.messages")
	require.NoError(t, err)

	c := channel.NewID()
	assert.Equal(t, r.ShardFor(c), r.ShardFor(c))
}

func TestShardDistribution(t *testing.T) {
	r, err := NewShardRouter(16, "chat.messages")
	require.NoError(t, err)

	counts := map[string]int{}
	for i := 0; i < 1000; i++ {
		counts[r.ShardFor(channel.NewID())]++
	}

	assert.Len(t, counts, 16, "every shard must be used")

	average := 1000.0 / 16.0
	for shard, count := range counts {
		ratio := float64(count) / average
		assert.True(t, ratio > 0.6 && ratio < 1.4, "shard %s distribution too skewed: %d vs avg %.1f", shard, count, average)
	}
}

func TestGetAllShards(t *testing.T) {
	r, err := NewShardRouter(4, "chat.messages")
	require.NoError(t, err)

	shards := r.AllShards()
	assert.Equal(t, []string{
		"chat.messages.0", "chat.messages.1", "chat.messages.2", "chat.messages.3",
	}, shards)
}

func TestZeroShardsReturnsError(t *testing.T) {
	_, err := NewShardRouter(0, "chat.messages")
	assert.ErrorIs(t, err, ErrZeroShards)
}

func TestNonPowerOfTwoReturnsError(t *testing.T) {
	_, err := NewShardRouter(5, "chat.messages")
	assert.ErrorIs(t, err, ErrNotPowerOfTwo)
}

func TestEmptyTopicPrefixReturnsError(t *testing.T) {
	_, err := NewShardRouter(16, "")
	assert.ErrorIs(t, err, ErrEmptyPrefix)
}

func TestShardFormat(t *testing.T) {
	r, err := NewShardRouter(8, "chat.messages")
	require.NoError(t, err)

	shard := r.ShardFor(channel.NewID())
	assert.Regexp(t, `^chat\.messages\.[0-7]$`, shard)
}
