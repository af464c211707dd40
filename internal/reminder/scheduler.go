// Package reminder keeps one pending delay notice per session.
package reminder

import (
	"sync"
	"time"
)

// Notifier delivers the delay notice. Firing has no state-machine
// consequence.
type Notifier interface {
	NotifyDelay(sessionID string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(sessionID string)

func (f NotifierFunc) NotifyDelay(sessionID string) { f(sessionID) }

// Scheduler is a registry of one-shot timers keyed by session id. At most
// one reminder is pending per session; arming replaces the previous one.
type Scheduler struct {
	mu       sync.Mutex
	pending  map[string]*time.Timer
	notifier Notifier
}

func NewScheduler(n Notifier) *Scheduler {
	return &Scheduler{
		pending:  make(map[string]*time.Timer),
		notifier: n,
	}
}

// Arm schedules a single delay notice after d, replacing any pending one.
func (s *Scheduler) Arm(sessionID string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.pending[sessionID]; ok {
		t.Stop()
	}
	s.pending[sessionID] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.pending, sessionID)
		s.mu.Unlock()
		s.notifier.NotifyDelay(sessionID)
	})
}

// Cancel removes a pending, unfired reminder. Cancelling after the fire (or
// with nothing pending) is a no-op.
func (s *Scheduler) Cancel(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.pending[sessionID]; ok {
		t.Stop()
		delete(s.pending, sessionID)
	}
}

// Pending reports whether a reminder is armed for the session.
func (s *Scheduler) Pending(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[sessionID]
	return ok
}

// Stop cancels every pending reminder, for shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}
