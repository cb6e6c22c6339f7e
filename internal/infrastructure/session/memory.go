package session

import (
	"context"
	"sync"
	"time"

	"github.com/comparewise/backend/internal/domain"
	"github.com/google/uuid"
)

// sessionItem is a stored session with its idle expiration
type sessionItem struct {
	Session    *domain.Session
	Expiration time.Time
}

// MemoryStore is a thread-safe in-memory session store. Sessions expire after
// ttl without activity.
type MemoryStore struct {
	data  map[string]sessionItem
	mutex sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryStore creates a session store and starts its cleanup loop
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	store := &MemoryStore{
		data: make(map[string]sessionItem),
		ttl:  ttl,
		now:  time.Now,
		stop: make(chan struct{}),
	}

	go store.cleanupExpired(10 * time.Minute)

	return store
}

// Create starts a new session with default state
func (s *MemoryStore) Create(ctx context.Context) (*domain.Session, error) {
	now := s.now()
	sess := domain.NewSession(uuid.New().String(), now)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[sess.ID] = sessionItem{
		Session:    sess,
		Expiration: now.Add(s.ttl),
	}

	return sess, nil
}

// Get returns a live session
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.data[id]
	if !exists || s.now().After(item.Expiration) {
		return nil, domain.ErrSessionNotFound
	}

	return item.Session, nil
}

// Touch extends a session's lifetime by the store TTL
func (s *MemoryStore) Touch(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	item, exists := s.data[id]
	if !exists || s.now().After(item.Expiration) {
		return domain.ErrSessionNotFound
	}

	item.Expiration = s.now().Add(s.ttl)
	s.data[id] = item
	return nil
}

// Delete ends a session
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.data[id]; !exists {
		return domain.ErrSessionNotFound
	}
	delete(s.data, id)
	return nil
}

// cleanupExpired removes expired sessions periodically
func (s *MemoryStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.purge()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) purge() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	for id, item := range s.data {
		if now.After(item.Expiration) {
			delete(s.data, id)
		}
	}
}

// Size returns the number of stored sessions, expired ones included until purged
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Close stops the cleanup loop
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}
