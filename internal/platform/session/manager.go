package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ExpireFunc is invoked when a session is closed for inactivity.
type ExpireFunc func(id, username string)

// Manager tracks active sessions and logs them out after a period of
// inactivity. Every authenticated request must call Touch, which resets
// the idle countdown. When the countdown fires the session is removed
// from the store and the expiry callback is invoked.
type Manager struct {
	store       Store
	idleTimeout time.Duration
	onExpire    ExpireFunc

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewManager(store Store, idleTimeout time.Duration, onExpire ExpireFunc) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = 15 * time.Minute
	}
	return &Manager{
		store:       store,
		idleTimeout: idleTimeout,
		onExpire:    onExpire,
		timers:      make(map[string]*time.Timer),
	}
}

// Open registers a new session for the given user.
func (m *Manager) Open(ctx context.Context, id, username string) error {
	if err := m.store.Put(ctx, id, username, m.idleTimeout); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	m.armTimer(id, username)
	return nil
}

// Touch resets the idle countdown for a session. Returns ErrNotFound when
// the session has already expired or was closed.
func (m *Manager) Touch(ctx context.Context, id string) error {
	username, err := m.store.Get(ctx, id)
	if err != nil {
		m.disarmTimer(id)
		return err
	}
	if err := m.store.Refresh(ctx, id, m.idleTimeout); err != nil {
		m.disarmTimer(id)
		return err
	}
	m.armTimer(id, username)
	return nil
}

// Close removes a session, e.g. on explicit logout. Closing does not invoke
// the expiry callback.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.disarmTimer(id)
	return m.store.Delete(ctx, id)
}

// Shutdown stops all idle timers without expiring the sessions.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
}

func (m *Manager) armTimer(id, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if timer, ok := m.timers[id]; ok {
		timer.Stop()
	}
	m.timers[id] = time.AfterFunc(m.idleTimeout, func() {
		m.expire(id, username)
	})
}

func (m *Manager) disarmTimer(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if timer, ok := m.timers[id]; ok {
		timer.Stop()
		delete(m.timers, id)
	}
}

func (m *Manager) expire(id, username string) {
	m.mu.Lock()
	delete(m.timers, id)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.store.Delete(ctx, id)

	if m.onExpire != nil {
		m.onExpire(id, username)
	}
}
