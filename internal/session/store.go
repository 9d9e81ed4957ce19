package session

import (
	"time"

	"finpal/internal/cache"
	"finpal/internal/loader"

	"github.com/google/uuid"
)

// Store keeps live sessions in a bounded cache with sliding expiry.
type Store struct {
	cache *cache.LRUCache[*Session]
	now   func() time.Time
	newID func() string
}

func NewStore(maxEntries int, ttl time.Duration) *Store {
	return &Store{
		cache: cache.NewLRUCache[*Session](maxEntries, ttl),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create registers a new session for an upload.
func (s *Store) Create(fileName string, result loader.Result, matched int) *Session {
	sess := New(s.newID(), fileName, result, matched, s.now())
	s.cache.Set(sess.ID, sess)
	return sess
}

// Get returns a live session and refreshes its expiry.
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return s.cache.Get(id)
}

func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

func (s *Store) Len() int {
	return s.cache.Size()
}

// Cleaner exposes the cache to a cache.Manager sweep.
func (s *Store) Cleaner() cache.Cleaner {
	return s.cache
}
