package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Manager loads and persists sessions. Within one process, requests for the same
// session id are serialized through Lock; across processes the last Save wins.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*idLock
}

// idLock is a one-slot semaphore so waiters can give up when their context ends.
type idLock struct {
	ch   chan struct{}
	refs int
}

func NewManager(store Store, ttl time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "session"),
		locks:  make(map[string]*idLock),
	}
}

// Lock blocks until the caller holds the lock for id or ctx is done.
// The returned func releases the lock and must be called exactly once.
func (m *Manager) Lock(ctx context.Context, id string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &idLock{ch: make(chan struct{}, 1)}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			m.release(id, l)
		}, nil
	case <-ctx.Done():
		m.release(id, l)
		return nil, fmt.Errorf("lock session %s: %w", id, ctx.Err())
	}
}

func (m *Manager) release(id string, l *idLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
}

// TTL is how long an idle session is kept.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Load returns the stored session for id, or a new empty session when none exists.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	snap, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		m.logger.DebugContext(ctx, "Starting new session", "session_id", id)
		return New(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return Restore(id, snap), nil
}

// Save persists a snapshot of s and renews its expiry.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if err := m.store.Set(ctx, s.ID, s.Snapshot(), m.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// Destroy removes the session.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("destroy session %s: %w", id, err)
	}
	return nil
}
