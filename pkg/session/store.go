package session

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/matzehuels/laneview/pkg/cache"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || sess.Expired(time.Now()) {
		return nil, nil
	}
	// Stored sessions are never handed out directly.
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("copy session: %w", err)
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("copy session: %w", err)
	}
	return &out, nil
}

func (s *MemoryStore) Set(_ context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	var stored Session
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = &stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.DeleteFunc(s.sessions, func(_ string, sess *Session) bool { return sess.Expired(time.Now()) })
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ Store = (*MemoryStore)(nil)

// CacheStore keeps sessions in a [cache.Cache] under the keyer's session
// keys. Entries are written with the time left until the session expires as
// their TTL.
type CacheStore struct {
	cache cache.Cache
	keyer cache.Keyer
}

// NewCacheStore creates a store on c. A nil keyer means the default keyer.
func NewCacheStore(c cache.Cache, keyer cache.Keyer) *CacheStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CacheStore{cache: c, keyer: keyer}
}

func (s *CacheStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	if err := ValidateID(sessionID); err != nil {
		return nil, nil
	}
	var data []byte
	var ok bool
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, ok, err = s.cache.Get(ctx, s.keyer.SessionKey(sessionID))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.Expired(time.Now()) {
		return nil, nil
	}
	return &sess, nil
}

func (s *CacheStore) Set(ctx context.Context, sess *Session) error {
	if err := ValidateID(sess.ID); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}
	return cache.RetryWithBackoff(ctx, func() error {
		return s.cache.Set(ctx, s.keyer.SessionKey(sess.ID), data, ttl)
	})
}

func (s *CacheStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, s.keyer.SessionKey(sessionID))
}

// Cleanup lists the session keys. Listing drops expired entries from a
// [cache.FileCache]; Redis and MongoDB expire them on their own.
func (s *CacheStore) Cleanup(ctx context.Context) error {
	_, err := s.cache.Keys(ctx, s.keyer.SessionKey(""))
	return err
}

var _ Store = (*CacheStore)(nil)
