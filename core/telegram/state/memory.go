package state

import (
	"sync"
	"sync/atomic"
)

// entry guards one user's session. A removed entry is marked dead so that
// callers that were waiting on it start over with a fresh one.
type entry[D any] struct {
	mu   sync.Mutex
	sess Session[D]
	dead bool
}

type memoryManager[D any] struct {
	mu       sync.Mutex
	sessions map[int64]*entry[D]
	// active counts entries whose session is not idle.
	active atomic.Int64
}

// NewMemoryManager constructs an in-memory Manager. Sessions do not survive
// a process restart.
func NewMemoryManager[D any]() Manager[D] {
	return &memoryManager[D]{
		sessions: make(map[int64]*entry[D]),
	}
}

// lock returns the user's entry locked, creating it if needed.
func (m *memoryManager[D]) lock(userID int64) *entry[D] {
	for {
		m.mu.Lock()
		e, ok := m.sessions[userID]
		if !ok {
			e = &entry[D]{sess: Session[D]{State: StateIdle}}
			m.sessions[userID] = e
		}
		m.mu.Unlock()

		e.mu.Lock()
		if !e.dead {
			return e
		}
		e.mu.Unlock()
	}
}

// drop removes a locked entry from the map.
func (m *memoryManager[D]) drop(userID int64, e *entry[D]) {
	e.dead = true
	m.mu.Lock()
	if m.sessions[userID] == e {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()
}

// Get returns a copy of the user's session, or an idle one if none exists.
func (m *memoryManager[D]) Get(userID int64) Session[D] {
	m.mu.Lock()
	e, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return Session[D]{State: StateIdle}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead {
		return Session[D]{State: StateIdle}
	}
	return e.sess
}

// Update runs fn while holding the user's session exclusively.
func (m *memoryManager[D]) Update(userID int64, fn func(*Session[D]) error) error {
	e := m.lock(userID)
	defer e.mu.Unlock()

	wasActive := !e.sess.Idle()
	defer func() {
		m.track(wasActive, !e.sess.Idle())
		if e.sess.Idle() {
			m.drop(userID, e)
		}
	}()
	return fn(&e.sess)
}

// Clear removes the entire session for a user.
func (m *memoryManager[D]) Clear(userID int64) {
	e := m.lock(userID)
	defer e.mu.Unlock()
	m.track(!e.sess.Idle(), false)
	m.drop(userID, e)
}

func (m *memoryManager[D]) track(was, is bool) {
	switch {
	case is && !was:
		m.active.Add(1)
	case was && !is:
		m.active.Add(-1)
	}
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager[D]) InProgress(userID int64) bool {
	return !m.Get(userID).Idle()
}

// Len returns the number of non-idle sessions without waiting on any
// user's lock.
func (m *memoryManager[D]) Len() int {
	return int(m.active.Load())
}
