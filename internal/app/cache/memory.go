package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"app-transcript/internal/app/model"
)

// MemoryCache is an unbounded in-process cache for a single session
type MemoryCache struct {
	id      string
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryCache creates an empty cache for session id
func NewMemoryCache(id string) *MemoryCache {
	return &MemoryCache{id: id, entries: make(map[string]Entry)}
}

func (c *MemoryCache) ID() string {
	return c.id
}

func (c *MemoryCache) Get(_ context.Context, kind model.MediaKind, fingerprint string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[Key(kind, fingerprint)]
	return e, ok, nil
}

func (c *MemoryCache) Put(_ context.Context, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Key()] = entry
	return nil
}

// Entries returns the session's entries, oldest first
func (c *MemoryCache) Entries(_ context.Context) ([]Entry, error) {
	c.mu.RLock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type memorySession struct {
	cache    *MemoryCache
	lastSeen time.Time
}

// MemoryStore keeps one MemoryCache per session. Sessions not seen for
// longer than ttl are dropped on the next access.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memorySession
}

// NewMemoryStore creates a store; ttl <= 0 keeps sessions forever
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*memorySession),
	}
}

func (s *MemoryStore) Session(id string) Cache {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(now)

	sess, ok := s.sessions[id]
	if !ok {
		sess = &memorySession{cache: NewMemoryCache(id)}
		s.sessions[id] = sess
	}
	sess.lastSeen = now
	return sess.cache
}

// Len returns the number of live sessions
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) expire(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
