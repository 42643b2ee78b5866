package blackboard

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

const defaultShardCount = 8

var _ Blackboard = (*Sharded)(nil)

// Sharded implements Blackboard with hash-based sharding so that
// concurrent node ticks touching disjoint keys do not contend on a
// single lock. Shard selection uses xxhash of the key.
type Sharded struct {
	shards  []*shard
	count   uint64
	version atomic.Int64
}

// shard holds a slice of the key space with its own mutex.
type shard struct {
	mu      sync.RWMutex
	data    map[string]any
	updated map[string]time.Time
}

func newShard() *shard {
	return &shard{
		data:    make(map[string]any),
		updated: make(map[string]time.Time),
	}
}

// New creates a blackboard with the default shard count.
func New() *Sharded {
	return NewWithShards(defaultShardCount)
}

// NewWithShards creates a blackboard with the given number of shards.
func NewWithShards(shardCount int) *Sharded {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = newShard()
	}
	return &Sharded{shards: shards, count: uint64(shardCount)}
}

func (b *Sharded) shardFor(key string) *shard {
	return b.shards[xxhash.Sum64String(key)%b.count]
}

func (b *Sharded) Set(key string, value any) {
	s := b.shardFor(key)
	s.mu.Lock()
	s.data[key] = value
	s.updated[key] = time.Now()
	s.mu.Unlock()
	b.version.Add(1)
}

func (b *Sharded) Get(key string) (any, bool) {
	s := b.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (b *Sharded) Delete(key string) {
	s := b.shardFor(key)
	s.mu.Lock()
	_, ok := s.data[key]
	delete(s.data, key)
	delete(s.updated, key)
	s.mu.Unlock()
	if ok {
		b.version.Add(1)
	}
}

func (b *Sharded) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

func (b *Sharded) Keys() []string {
	keys := make([]string, 0)
	for _, s := range b.shards {
		s.mu.RLock()
		for k := range s.data {
			keys = append(keys, k)
		}
		s.mu.RUnlock()
	}
	sort.Strings(keys)
	return keys
}

func (b *Sharded) Clear() {
	for _, s := range b.shards {
		s.mu.Lock()
		s.data = make(map[string]any)
		s.updated = make(map[string]time.Time)
		s.mu.Unlock()
	}
	b.version.Add(1)
}

func (b *Sharded) GetString(key string) (string, bool) {
	v, ok := b.Get(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

func (b *Sharded) GetInt(key string) (int, bool) {
	v, ok := b.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func (b *Sharded) GetFloat(key string) (float64, bool) {
	v, ok := b.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func (b *Sharded) GetBool(key string) (bool, bool) {
	v, ok := b.Get(key)
	if !ok {
		return false, false
	}
	bv, ok := v.(bool)
	return bv, ok
}

func (b *Sharded) Version() int64 {
	return b.version.Load()
}

func (b *Sharded) LastUpdated(key string) (time.Time, bool) {
	s := b.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.updated[key]
	return t, ok
}

func (b *Sharded) Snapshot() map[string]any {
	out := make(map[string]any)
	for _, s := range b.shards {
		s.mu.RLock()
		for k, v := range s.data {
			out[k] = v
		}
		s.mu.RUnlock()
	}
	return out
}
