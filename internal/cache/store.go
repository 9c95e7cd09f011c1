package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store is an in-memory cache bounded by capacity and entry age. It is
// safe for concurrent use; concurrent writers of the same key race and the
// last one wins.
type Store[V any] struct {
	name   string
	lru    *expirable.LRU[string, V]
	hits   atomic.Uint64
	misses atomic.Uint64
	onGet  func(name string, hit bool)
}

// Stats is a point-in-time view of a Store.
type Stats struct {
	Name    string  `json:"name"`
	Entries int     `json:"entries"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hitRate"`
}

// NewStore returns a store holding at most size entries for ttl each.
// onGet, when non-nil, observes every lookup.
func NewStore[V any](name string, size int, ttl time.Duration, onGet func(name string, hit bool)) *Store[V] {
	if size <= 0 {
		size = 1
	}
	return &Store[V]{
		name:  name,
		lru:   expirable.NewLRU[string, V](size, nil, ttl),
		onGet: onGet,
	}
}

// Get returns the value for key if present and not expired.
func (s *Store[V]) Get(key string) (V, bool) {
	v, ok := s.lru.Get(key)
	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	if s.onGet != nil {
		s.onGet(s.name, ok)
	}
	return v, ok
}

// Set stores v under key.
func (s *Store[V]) Set(key string, v V) { s.lru.Add(key, v) }

// Purge drops every entry. Counters are kept.
func (s *Store[V]) Purge() { s.lru.Purge() }

// Len returns the number of live entries.
func (s *Store[V]) Len() int { return s.lru.Len() }

// Stats returns the current counters.
func (s *Store[V]) Stats() Stats {
	h, m := s.hits.Load(), s.misses.Load()
	st := Stats{Name: s.name, Entries: s.lru.Len(), Hits: h, Misses: m}
	if h+m > 0 {
		st.HitRate = float64(h) / float64(h+m)
	}
	return st
}

// KeyFrom builds a cache key from a namespace and content digest.
func KeyFrom(namespace string, parts ...string) string {
	h := sha256.Sum256([]byte(namespace + "\n\n" + strings.Join(parts, "\n")))
	return namespace + ":" + hex.EncodeToString(h[:])
}
