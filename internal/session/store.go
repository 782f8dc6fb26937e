package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"saffron-order-desk/internal/catalog"
	"saffron-order-desk/internal/storefront"
)

type Session struct {
	Key          string
	Username     string
	State        *storefront.State
	LastActivity time.Time
}

type Options struct {
	Catalog *catalog.Catalog
	IdleTTL time.Duration
	Now     func() time.Time
}

// Store keeps one storefront session per visitor in memory. Every read and
// write goes through the mutex; callers only ever see copies.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cat      *catalog.Catalog
	idleTTL  time.Duration
	now      func() time.Time
}

func NewStore(opts Options) *Store {
	idle := opts.IdleTTL
	if idle <= 0 {
		idle = 2 * time.Hour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}

	return &Store{
		sessions: make(map[string]*Session),
		cat:      cat,
		idleTTL:  idle,
		now:      now,
	}
}

// ChatKey is the session key for a Telegram chat member.
func ChatKey(chatID, userID int64) string {
	return strconv.FormatInt(chatID, 10) + ":" + strconv.FormatInt(userID, 10)
}

func (s *Store) Catalog() *catalog.Catalog {
	return s.cat
}

func (s *Store) Get(key string) storefront.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(key, "")
	sess.LastActivity = s.now()
	return sess.State.Clone()
}

// Update applies fn to the session state atomically and returns a copy of
// the result.
func (s *Store) Update(key string, fn func(*storefront.State)) storefront.State {
	return s.UpdateAs(key, "", fn)
}

func (s *Store) UpdateAs(key, username string, fn func(*storefront.State)) storefront.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(key, username)
	if fn != nil {
		fn(sess.State)
	}
	now := s.now()
	sess.State.UpdatedAt = now
	sess.LastActivity = now
	return sess.State.Clone()
}

// Clear drops the session; the next access starts from a fresh state.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
}

func (s *Store) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[key]
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the configured TTL and
// reports how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for key, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed := s.Sweep()
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}

func (s *Store) getOrCreateLocked(key, username string) *Session {
	if sess, ok := s.sessions[key]; ok {
		if sess.Username == "" && username != "" {
			sess.Username = username
		}
		return sess
	}

	sess := &Session{
		Key:          key,
		Username:     username,
		State:        storefront.NewState(s.cat),
		LastActivity: s.now(),
	}
	s.sessions[key] = sess
	return sess
}
