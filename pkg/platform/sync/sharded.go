package sync

import (
	"sync"
)

// ShardedMutex provides fine-grained locking using sharded mutexes.
// Record mutations are serialized per identity by hashing the identity ID
// onto one of N shards, so unrelated identities never contend.
type ShardedMutex struct {
	shards [32]sync.Mutex
}

// NewShardedMutex creates a new ShardedMutex with 32 shards.
func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

// Lock acquires the lock for the given key's shard.
// Empty keys default to shard 0.
func (m *ShardedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases the lock for the given key's shard.
func (m *ShardedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

func (m *ShardedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(hashString(key) % uint32(len(m.shards)))
}

// hashString provides a simple multiplicative hash for shard selection.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
