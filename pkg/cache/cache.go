// Package cache provides a time-boxed key/value store with bounded capacity
// and insertion-order eviction, backing the window, application and element
// caches.
package cache

import "time"

// entry holds one cached value with its expiry bookkeeping.
type entry[V any] struct {
	value      V
	ttl        time.Duration
	insertedAt time.Time
	seq        uint64 // monotonic insertion order, breaks timestamp ties
}

func (e *entry[V]) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) > e.ttl
}

// Store is a bounded TTL cache. Insertion beyond capacity first purges all
// expired entries and, if still over capacity, evicts the single
// oldest-inserted entry. Eviction is by insertion order, not LRU-by-access;
// the simpler policy keeps test outcomes predictable.
//
// Store is not safe for concurrent use. Parallel workers must each own an
// independent instance.
type Store[V any] struct {
	entries    map[string]*entry[V]
	capacity   int
	defaultTTL time.Duration
	seq        uint64
	now        func() time.Time
}

// New creates a store holding at most capacity entries, each expiring after
// defaultTTL unless overridden per entry.
func New[V any](capacity int, defaultTTL time.Duration) *Store[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Store[V]{
		entries:    make(map[string]*entry[V]),
		capacity:   capacity,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Set inserts or replaces the value for key with the default TTL.
func (s *Store[V]) Set(key string, value V) {
	s.SetTTL(key, value, s.defaultTTL)
}

// SetTTL inserts or replaces the value for key with an explicit TTL.
func (s *Store[V]) SetTTL(key string, value V, ttl time.Duration) {
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.capacity {
		s.evict()
	}
	s.seq++
	s.entries[key] = &entry[V]{
		value:      value,
		ttl:        ttl,
		insertedAt: s.now(),
		seq:        s.seq,
	}
}

// Get returns the fresh value for key. Expired entries are removed on
// lookup. Freshness only bounds age; callers holding native handles must
// still validate them before reuse.
func (s *Store[V]) Get(key string) (V, bool) {
	var zero V
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return zero, false
	}
	return e.value, true
}

// Contains reports whether key holds a fresh entry.
func (s *Store[V]) Contains(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Remove deletes the entry for key, reporting whether it existed.
func (s *Store[V]) Remove(key string) bool {
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// Clear drops every entry.
func (s *Store[V]) Clear() {
	s.entries = make(map[string]*entry[V])
}

// Len returns the number of live entries after purging expired ones.
func (s *Store[V]) Len() int {
	s.purgeExpired()
	return len(s.entries)
}

// Keys returns the keys of all live entries, in no particular order.
func (s *Store[V]) Keys() []string {
	s.purgeExpired()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// Touch resets the TTL of an existing entry, reporting whether it existed.
func (s *Store[V]) Touch(key string, ttl time.Duration) bool {
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.ttl = ttl
	return true
}

// Remaining returns how long the entry for key stays fresh, zero if absent
// or already expired.
func (s *Store[V]) Remaining(key string) time.Duration {
	e, ok := s.entries[key]
	if !ok {
		return 0
	}
	left := e.ttl - s.now().Sub(e.insertedAt)
	if left < 0 {
		return 0
	}
	return left
}

func (s *Store[V]) purgeExpired() {
	now := s.now()
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
		}
	}
}

// evict makes room for one insertion: purge expired entries first, then
// drop the oldest-inserted entry if the store is still full.
func (s *Store[V]) evict() {
	s.purgeExpired()
	if len(s.entries) < s.capacity {
		return
	}

	var oldestKey string
	var oldestSeq uint64
	first := true
	for k, e := range s.entries {
		if first || e.seq < oldestSeq {
			oldestKey, oldestSeq = k, e.seq
			first = false
		}
	}
	if !first {
		delete(s.entries, oldestKey)
	}
}
