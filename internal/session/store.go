package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alkime/audioscribe/internal/content"
)

// ErrNotFound is returned for an unknown or expired session id.
var ErrNotFound = errors.New("session not found")

type entry struct {
	ws      *Workspace
	touched time.Time
}

// Store keeps one workspace per browser session and closes the ones that
// have been idle longer than the TTL.
type Store struct {
	mu       sync.Mutex
	ctx      context.Context
	svc      content.Service
	opts     []Option
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*entry
}

// NewStore creates a store. A zero ttl keeps sessions until Close.
func NewStore(ctx context.Context, svc content.Service, ttl time.Duration, opts ...Option) *Store {
	return &Store{
		ctx:      ctx,
		svc:      svc,
		opts:     opts,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Create starts a new workspace and returns its id.
func (s *Store) Create() (string, *Workspace, error) {
	ws, err := NewWorkspace(s.ctx, s.svc, s.opts...)
	if err != nil {
		return "", nil, err
	}

	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &entry{ws: ws, touched: s.now()}
	s.mu.Unlock()

	slog.Info("session created", "id", id)

	return id, ws, nil
}

// Get returns the workspace for id and marks it as used.
func (s *Store) Get(id string) (*Workspace, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.touched = s.now()

	return e.ws, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Sweep closes sessions idle longer than the TTL and returns how many.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.ttl)

	var expired []*Workspace

	s.mu.Lock()
	for id, e := range s.sessions {
		if e.touched.Before(cutoff) {
			expired = append(expired, e.ws)
			delete(s.sessions, id)
			slog.Info("session expired", "id", id)
		}
	}
	s.mu.Unlock()

	for _, ws := range expired {
		ws.Close()
	}

	return len(expired)
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close closes every session.
func (s *Store) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range all {
		e.ws.Close()
	}
}
