// Package session keeps one flow controller per browser session in memory.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/valpere/meditranslate/internal/flow"
	"github.com/valpere/meditranslate/internal/metrics"
)

type entry struct {
	ctrl     *flow.Controller
	lastSeen time.Time
}

// Store maps session ids to controllers. Sessions idle for longer than the
// TTL are removed by Sweep unless they are processing.
type Store struct {
	newController func() *flow.Controller
	ttl           time.Duration
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewStore(newController func() *flow.Controller, ttl time.Duration) *Store {
	return &Store{
		newController: newController,
		ttl:           ttl,
		now:           time.Now,
		sessions:      make(map[string]*entry),
	}
}

// Create starts a new session in the Upload state.
func (s *Store) Create() (string, *flow.Controller) {
	id := uuid.NewString()
	ctrl := s.newController()

	s.mu.Lock()
	s.sessions[id] = &entry{ctrl: ctrl, lastSeen: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	log.WithField("session", id).Debug("session created")
	return id, ctrl
}

// Get returns the session's controller and marks it as used.
func (s *Store) Get(id string) (*flow.Controller, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.ctrl, true
}

// Delete removes a session. It reports whether the session existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.After(cutoff) || e.ctrl.State().Kind() == flow.KindProcessing {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	if removed > 0 {
		log.WithFields(log.Fields{
			"removed": removed,
			"active":  n,
		}).Info("expired sessions removed")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
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
