package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

// Manager keeps the live controllers of this process, keyed by session id.
type Manager struct {
	mu       sync.RWMutex
	deps     Deps
	opts     Options
	sessions map[domain.SessionID]*Controller
}

func NewManager(deps Deps, opts Options) *Manager {
	return &Manager{
		deps:     deps,
		opts:     opts,
		sessions: make(map[domain.SessionID]*Controller),
	}
}

// Start opens a new session on the interview. Interviews of another user
// look missing; an empty userID skips the check.
func (m *Manager) Start(ctx context.Context, userID domain.UserID, interviewID domain.InterviewID) (domain.SessionID, *Controller, error) {
	id := domain.SessionID(uuid.NewString())
	ctx = observability.WithSessionID(ctx, string(id))

	c, err := NewController(ctx, m.deps, interviewID, m.opts)
	if err != nil {
		return "", nil, err
	}
	if !ownedBy(c, userID) {
		c.Close()
		return "", nil, domain.ErrNotFound
	}

	m.mu.Lock()
	m.sessions[id] = c
	m.mu.Unlock()

	observability.LoggerFromContext(ctx).Info("practice session started", "interview_id", interviewID, "user_id", userID)
	return id, c, nil
}

// Get returns the session when userID may drive it.
func (m *Manager) Get(id domain.SessionID, userID domain.UserID) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.sessions[id]
	if !ok || !ownedBy(c, userID) {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// End closes the session and forgets it.
func (m *Manager) End(id domain.SessionID, userID domain.UserID) error {
	m.mu.Lock()
	c, ok := m.sessions[id]
	if !ok || !ownedBy(c, userID) {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	c.Close()
	return nil
}

func ownedBy(c *Controller, userID domain.UserID) bool {
	return userID == "" || c.Owner() == userID
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll ends every session, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[domain.SessionID]*Controller)
	m.mu.Unlock()

	for _, c := range sessions {
		c.Close()
	}
}
