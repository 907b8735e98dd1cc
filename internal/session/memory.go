package session

import "sync"

type userState struct {
	quiz                     *Quiz
	awaitingNotificationTime bool
}

type memoryManager struct {
	mu    sync.RWMutex
	users map[int64]*userState
}

// NewMemoryManager constructs an in-memory Manager implementation. Session
// data lives until explicitly cleared; there is no automatic expiry.
func NewMemoryManager() Manager {
	return &memoryManager{users: make(map[int64]*userState)}
}

func (m *memoryManager) state(userID int64) *userState {
	st, ok := m.users[userID]
	if !ok {
		st = &userState{}
		m.users[userID] = st
	}
	return st
}

// Quiz returns the active quiz for a user, or nil.
func (m *memoryManager) Quiz(userID int64) *Quiz {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.users[userID]; ok {
		return st.quiz
	}
	return nil
}

// StartQuiz installs a fresh quiz session, silently replacing any previous one.
func (m *memoryManager) StartQuiz(userID int64, q *Quiz) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state(userID).quiz = q
}

// ClearQuiz removes the quiz session for a user.
func (m *memoryManager) ClearQuiz(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.users[userID]; ok {
		st.quiz = nil
	}
}

// SetAwaitingNotificationTime flags that the next text message carries a
// reminder time.
func (m *memoryManager) SetAwaitingNotificationTime(userID int64, awaiting bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state(userID).awaitingNotificationTime = awaiting
}

// AwaitingNotificationTime reports whether the user is entering a reminder time.
func (m *memoryManager) AwaitingNotificationTime(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.users[userID]; ok {
		return st.awaitingNotificationTime
	}
	return false
}

// Clear removes all session data for a user.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
}
