package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/storage"
)

type InMemorySessionManager struct {
	mu       sync.RWMutex
	sessions map[string]models.RefreshSession
	nextID   int64
	log      *zap.SugaredLogger
}

func NewSessionRepository(log *zap.SugaredLogger) *InMemorySessionManager {
	return &InMemorySessionManager{
		sessions: make(map[string]models.RefreshSession),
		log:      log,
	}
}

func (m *InMemorySessionManager) CreateSession(_ context.Context, session models.RefreshSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	session.ID = m.nextID
	m.sessions[session.Selector] = session
	m.log.Debugw("Session created", "sessionID", session.ID, "userID", session.UserID, "expiresAt", session.ExpiresAt)

	return nil
}

func (m *InMemorySessionManager) GetActiveSessionBySelector(_ context.Context, selector string) (*models.RefreshSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[selector]
	if !ok || session.Used || time.Now().After(session.ExpiresAt) {
		m.log.Debugw("Session not found", "selector", selector)
		return nil, storage.ErrSessionNotFound
	}

	return &session, nil
}

func (m *InMemorySessionManager) RotateSession(_ context.Context, oldSelector string, next models.RefreshSession) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.sessions[oldSelector]
	if !ok || old.Used {
		return false, nil
	}
	old.Used = true
	m.sessions[oldSelector] = old

	m.nextID++
	next.ID = m.nextID
	m.sessions[next.Selector] = next
	m.log.Debugw("Session rotated", "oldSessionID", old.ID, "sessionID", next.ID, "userID", next.UserID)

	return true, nil
}

func (m *InMemorySessionManager) DeleteAllUserSessions(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for selector, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessions, selector)
		}
	}

	return nil
}
