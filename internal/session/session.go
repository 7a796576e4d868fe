// Package session tracks multi-step chat conversations. A session is keyed
// by (user, kind), collects a fixed list of fields in order, and is
// abandoned without side effects once it has been idle longer than the
// store's timeout.
package session

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind names the operation a session collects input for.
type Kind string

const (
	KindAddItem Kind = "add_item"
	KindRequest Kind = "request"
)

// ErrNoSession is returned when no live session matches.
var ErrNoSession = errors.New("no active session")

// Session is a snapshot of one conversation.
type Session struct {
	ID       uuid.UUID
	UserID   int64
	Kind     Kind
	Required []string
	Fields   map[string]string
	Started  time.Time
	Touched  time.Time
}

// Missing returns the first required field that has not been filled.
func (s Session) Missing() (string, bool) {
	for _, f := range s.Required {
		if _, ok := s.Fields[f]; !ok {
			return f, true
		}
	}
	return "", false
}

// Complete reports whether every required field has a value. An empty
// string counts as a value.
func (s Session) Complete() bool {
	_, missing := s.Missing()
	return !missing
}

// Value returns a collected field.
func (s Session) Value(field string) string {
	return s.Fields[field]
}

func (s Session) clone() Session {
	s.Required = slices.Clone(s.Required)
	s.Fields = maps.Clone(s.Fields)
	return s
}

type key struct {
	userID int64
	kind   Kind
}

// Store holds live sessions in memory. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[key]*Session
	timeout  time.Duration
	now      func() time.Time
}

// NewStore returns a Store whose sessions expire after timeout of inactivity.
func NewStore(timeout time.Duration) *Store {
	return &Store{
		sessions: make(map[key]*Session),
		timeout:  timeout,
		now:      time.Now,
	}
}

// SetClock overrides the time source.
func (st *Store) SetClock(now func() time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.now = now
}

// Start opens a session, replacing any existing one of the same kind for
// the user. Seed values count as filled fields.
func (st *Store) Start(userID int64, kind Kind, required []string, seed map[string]string) Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	fields := maps.Clone(seed)
	if fields == nil {
		fields = make(map[string]string)
	}
	s := &Session{
		ID:       uuid.New(),
		UserID:   userID,
		Kind:     kind,
		Required: slices.Clone(required),
		Fields:   fields,
		Started:  now,
		Touched:  now,
	}
	st.sessions[key{userID, kind}] = s
	return s.clone()
}

// Active returns the user's most recently touched live session.
func (st *Store) Active(userID int64) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	var best *Session
	for k, s := range st.sessions {
		if k.userID != userID {
			continue
		}
		if st.expired(s, now) {
			delete(st.sessions, k)
			continue
		}
		if best == nil || s.Touched.After(best.Touched) {
			best = s
		}
	}
	if best == nil {
		return Session{}, false
	}
	return best.clone(), true
}

// Fill records value for the next missing field of the session snap was
// taken from and returns the updated snapshot. It returns ErrNoSession if
// that session expired or was replaced by a newer Start.
func (st *Store) Fill(snap Session, value string) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.live(snap, st.now())
	if !ok {
		return Session{}, ErrNoSession
	}

	if field, missing := s.Missing(); missing {
		s.Fields[field] = value
	}
	s.Touched = st.now()
	return s.clone(), nil
}

// End removes the session snap was taken from and reports whether it was
// live. A newer session of the same kind is left alone.
func (st *Store) End(snap Session) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.live(snap, st.now())
	if ok {
		delete(st.sessions, key{s.UserID, s.Kind})
	}
	return ok
}

// live returns the stored session matching snap. Expired sessions are
// dropped. Callers hold mu.
func (st *Store) live(snap Session, now time.Time) (*Session, bool) {
	k := key{snap.UserID, snap.Kind}
	s, ok := st.sessions[k]
	if !ok {
		return nil, false
	}
	if st.expired(s, now) {
		delete(st.sessions, k)
		return nil, false
	}
	return s, s.ID == snap.ID
}

// Cancel removes every session for the user and returns how many were live.
func (st *Store) Cancel(userID int64) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	n := 0
	for k, s := range st.sessions {
		if k.userID != userID {
			continue
		}
		if !st.expired(s, now) {
			n++
		}
		delete(st.sessions, k)
	}
	return n
}

// Sweep drops expired sessions and returns how many it dropped.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	n := 0
	for k, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions, live or not yet swept.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (st *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}

func (st *Store) expired(s *Session, now time.Time) bool {
	return st.timeout > 0 && now.Sub(s.Touched) > st.timeout
}
