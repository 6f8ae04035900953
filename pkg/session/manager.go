// Package session keeps per-conversation state in memory: the current
// phase, the last classified intent, pending clarification questions,
// and the latest document snapshot. Idle sessions are swept after a
// TTL.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an idle session survives.
const DefaultTTL = 30 * time.Minute

// sweepInterval is how often the sweeper scans for expired sessions.
const sweepInterval = time.Minute

// Manager manages sessions in memory. Lock order: Manager.mu before
// any Session.mu; never the reverse.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	ttl time.Duration
	now func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a session manager. A non-positive ttl falls back
// to DefaultTTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetOrCreate returns the session for the given id, creating it lazily
// on first use. An empty id gets a fresh UUID. The returned bool
// reports whether the session already existed.
func (m *Manager) GetOrCreate(sessionID string) (*Session, bool) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID != "" {
		if session, ok := m.sessions[sessionID]; ok {
			return session, true
		}
	} else {
		sessionID = uuid.New().String()
	}

	session := &Session{
		ID:           sessionID,
		Phase:        PhaseInitial,
		CreatedAt:    now,
		LastActivity: now,
	}
	m.sessions[sessionID] = session
	return session, false
}

// Get retrieves a session by id.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	return session, nil
}

// List returns snapshots of all live sessions.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Snapshot, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Snapshot())
	}
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Delete removes a session.
func (m *Manager) Delete(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	delete(m.sessions, sessionID)
	return nil
}

// Sweep terminates and removes every session idle past the TTL,
// returning how many were collected.
func (m *Manager) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for id, s := range m.sessions {
		if s.expired(now, m.ttl) {
			s.Terminate()
			delete(m.sessions, id)
			count++
		}
	}
	return count
}

// Start launches the background TTL sweep loop.
func (m *Manager) Start(ctx context.Context) {
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go m.run(ctx)

	slog.Info("Session sweeper started", "ttl", m.ttl, "interval", sweepInterval)
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	slog.Info("Session sweeper stopped")
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if count := m.Sweep(); count > 0 {
				slog.Info("Swept expired sessions", "count", count)
			}
		}
	}
}
