// Package session holds per-conversation state for the assistant. Sessions
// are memory-resident and lost on restart; durability is out of scope.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pvlab/backend/pkg/logger"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// DefaultTimeout is the idle time after which a session becomes
	// eligible for removal by SweepExpired.
	DefaultTimeout = 3600 * time.Second

	defaultHistoryLimit = 10
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Turn is the timestamp-free projection handed to the model as
// conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time

	mu          sync.Mutex
	messages    []Message
	metadata    map[string]any
	lastUpdated time.Time
}

// AppendMessage appends to the ordered log and bumps the activity
// timestamp. Role is not validated; callers use RoleUser/RoleAssistant.
func (s *Session) AppendMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	s.lastUpdated = time.Now().UTC()
}

// RecentMessages returns the last limit messages (all, if fewer) as
// role/content pairs, oldest first. The log itself is never mutated.
func (s *Session) RecentMessages(limit int) []Turn {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if len(s.messages) > limit {
		start = len(s.messages) - limit
	}

	turns := make([]Turn, 0, len(s.messages)-start)
	for _, msg := range s.messages[start:] {
		turns = append(turns, Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}

// History returns a copy of the full message log with timestamps.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *Session) SetMetadata(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metadata[key] = value
	s.lastUpdated = time.Now().UTC()
}

func (s *Session) GetMetadata(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.metadata[key]; ok {
		return v
	}
	return def
}

func (s *Session) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.lastUpdated = time.Now().UTC()
}

func (s *Session) LastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdated
}

// Store is the registry of live sessions. The registry lock guards
// membership only; message-log mutation is serialized per session, and no
// lock is ever held across a model call.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	timeout  time.Duration
}

func NewStore(timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

func newSession(sessionID, userID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:          sessionID,
		UserID:      userID,
		CreatedAt:   now,
		metadata:    make(map[string]any),
		lastUpdated: now,
	}
}

// Create registers a new session. An empty sessionID gets a generated one.
func (st *Store) Create(sessionID, userID string) *Session {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	sess := newSession(sessionID, userID)

	st.mu.Lock()
	st.sessions[sessionID] = sess
	st.mu.Unlock()

	logger.Debug("Session created",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
	)

	return sess
}

// Get is a pure lookup; it never creates.
func (st *Store) Get(sessionID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[sessionID]
	return sess, ok
}

// GetOrCreate returns the existing session for sessionID or registers a
// new empty one. Idempotent: concurrent callers for the same id share one
// session identity.
func (st *Store) GetOrCreate(sessionID, userID string) *Session {
	if sessionID == "" {
		return st.Create("", userID)
	}

	st.mu.RLock()
	sess, ok := st.sessions[sessionID]
	st.mu.RUnlock()
	if ok {
		return sess
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	// Re-check under the write lock: another request may have won.
	if sess, ok := st.sessions[sessionID]; ok {
		return sess
	}

	sess = newSession(sessionID, userID)
	st.sessions[sessionID] = sess
	return sess
}

func (st *Store) Delete(sessionID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[sessionID]; !ok {
		return false
	}
	delete(st.sessions, sessionID)
	return true
}

// SweepExpired removes sessions idle longer than the store timeout. Linear
// scan; the session population is small and the sweep is periodic.
func (st *Store) SweepExpired(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if now.Sub(sess.LastUpdated()) > st.timeout {
			delete(st.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		logger.Info("Expired sessions removed", zap.Int("count", removed))
	}

	return removed
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

type Stats struct {
	TotalSessions  int            `json:"total_sessions"`
	SessionsByUser map[string]int `json:"sessions_by_user"`
	OldestSession  *time.Time     `json:"oldest_session,omitempty"`
	NewestSession  *time.Time     `json:"newest_session,omitempty"`
}

func (st *Store) Stats() Stats {
	st.mu.RLock()
	defer st.mu.RUnlock()

	stats := Stats{
		TotalSessions:  len(st.sessions),
		SessionsByUser: make(map[string]int),
	}

	for _, sess := range st.sessions {
		if sess.UserID != "" {
			stats.SessionsByUser[sess.UserID]++
		}
		created := sess.CreatedAt
		if stats.OldestSession == nil || created.Before(*stats.OldestSession) {
			c := created
			stats.OldestSession = &c
		}
		if stats.NewestSession == nil || created.After(*stats.NewestSession) {
			c := created
			stats.NewestSession = &c
		}
	}

	return stats
}
