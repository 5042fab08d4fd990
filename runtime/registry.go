package runtime

import (
	"encoding/binary"
	"hash/fnv"
	"sync"

	"github.com/PY0226H/aicomm/contract"
	"github.com/PY0226H/aicomm/domain/event"
)

const shardCount = 32

// Registry is the concurrent map from user id to that user's broadcaster.
// It is sharded by key hash so that unrelated users never contend on one
// lock; the ingester publishes and connection handlers subscribe from many
// goroutines at once.
//
// Entries are created lazily on first subscription and never reclaimed when
// the last subscriber leaves. The map therefore grows with the set of users
// seen since process start; an idle entry costs one map slot and an empty
// buffer, and keeping it avoids a teardown race between Publish and
// Subscribe on the same key.
type Registry struct {
	capacity int
	shards   [shardCount]registryShard
}

type registryShard struct {
	mu    sync.RWMutex
	users map[uint64]*Broadcaster
}

// NewRegistry builds a registry whose broadcasters buffer up to capacity
// events per subscriber.
func NewRegistry(capacity int) *Registry {
	r := &Registry{capacity: capacity}
	for i := range r.shards {
		r.shards[i].users = make(map[uint64]*Broadcaster)
	}
	return r
}

func (r *Registry) shard(userID uint64) *registryShard {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], userID)
	h := fnv.New32a()
	_, _ = h.Write(key[:])
	return &r.shards[h.Sum32()%shardCount]
}

// GetOrCreate returns the user's broadcaster, creating it on first use.
// Concurrent calls for the same absent key all receive the single winning
// broadcaster; no duplicate channel is ever created.
func (r *Registry) GetOrCreate(userID uint64) *Broadcaster {
	s := r.shard(userID)

	s.mu.RLock()
	b, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.users[userID]; ok {
		return b
	}
	b = NewBroadcaster(r.capacity)
	s.users[userID] = b
	return b
}

// Subscribe attaches a fresh receiver to the user's broadcaster, creating
// the entry if this is the user's first subscription.
func (r *Registry) Subscribe(userID uint64) *Subscription {
	return r.GetOrCreate(userID).Subscribe()
}

// Publish delivers the event to the user's subscribers, if any. Publishing
// to a user with no entry is a deliberate no-op: nobody is listening and
// this is a live broadcast, so the event is simply dropped.
// It reports whether an entry existed.
func (r *Registry) Publish(userID uint64, e event.AppEvent) bool {
	s := r.shard(userID)

	s.mu.RLock()
	b, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	b.Publish(e)
	return true
}

// Stats counts known users and live subscriptions across all shards.
func (r *Registry) Stats() contract.RegistryStats {
	var stats contract.RegistryStats
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		stats.Users += len(s.users)
		for _, b := range s.users {
			stats.Subscribers += b.Subscribers()
		}
		s.mu.RUnlock()
	}
	return stats
}
