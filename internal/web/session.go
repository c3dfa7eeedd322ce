// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "compound_engine_session"

// session tracks one browser's recent activity.
type session struct {
	Queries  int
	LastSeen time.Time
}

// sessionStore remembers browser sessions by cookie value. Idle sessions
// expire after the configured TTL; expired entries are pruned lazily on
// access so no background goroutine is needed.
type sessionStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	byID map[string]*session
	now  func() time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionStore{
		ttl:  ttl,
		byID: make(map[string]*session),
		now:  time.Now,
	}
}

// touch returns the live session ID for id, minting a fresh one when id is
// empty, unknown, or expired. created reports whether a new session was
// minted, meaning the caller must re-set the cookie.
func (s *sessionStore) touch(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if sess, ok := s.byID[id]; ok {
		sess.LastSeen = now
		return id, false
	}

	id = uuid.NewString()
	s.byID[id] = &session{LastSeen: now}
	return id, true
}

// countQuery increments and returns the query counter for id.
func (s *sessionStore) countQuery(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.byID[id]; ok {
		sess.Queries++
		return sess.Queries
	}
	return 0
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	return len(s.byID)
}

func (s *sessionStore) pruneLocked(now time.Time) {
	for id, sess := range s.byID {
		if now.Sub(sess.LastSeen) > s.ttl {
			delete(s.byID, id)
		}
	}
}
