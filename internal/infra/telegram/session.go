package telegram

import (
	"sync"
	"time"

	"daily_survey_bot/internal/domain/scoring"
)

// Step names the question a session is currently waiting on. The initial
// mood question carries its survey reference inside the inline keyboard, so
// a session only comes into existence once a mood is picked.
type Step string

const (
	StepMode      Step = "awaiting_mode"
	StepCampaigns Step = "awaiting_campaigns"
	StepGeo       Step = "awaiting_geo"
	StepCreatives Step = "awaiting_creatives"
	StepAccounts  Step = "awaiting_accounts"
	StepConfirm   Step = "awaiting_confirm"
)

// Session holds one chat's in-progress survey draft between the mood pick
// and the final submit or restart. Test-mode sessions never touch storage.
type Session struct {
	ChatID    int64
	SurveyID  int64 // Zero in test mode
	IsTest    bool
	Mood      scoring.Color
	Mode      string
	Campaigns int
	Geo       int
	Creatives int
	Accounts  int
	Step      Step
	UpdatedAt time.Time
}

// SessionManager keeps the per-chat conversation sessions in memory.
// Sessions past the TTL are treated as abandoned and reaped lazily.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Begin starts a fresh session for the chat, discarding any previous one.
func (m *SessionManager) Begin(chatID, surveyID int64, isTest bool, mood scoring.Color) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reapLocked()

	s := &Session{
		ChatID:    chatID,
		SurveyID:  surveyID,
		IsTest:    isTest,
		Mood:      mood,
		Step:      StepMode,
		UpdatedAt: m.now(),
	}
	m.sessions[chatID] = s
	return s
}

// Get returns the chat's live session. Expired sessions are dropped.
func (m *SessionManager) Get(chatID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[chatID]
	if !ok {
		return nil, false
	}
	if m.now().Sub(s.UpdatedAt) > m.ttl {
		delete(m.sessions, chatID)
		return nil, false
	}
	return s, true
}

// Touch refreshes the session's abandonment clock after a step advances.
func (m *SessionManager) Touch(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[chatID]; ok {
		s.UpdatedAt = m.now()
	}
}

// Clear removes the chat's session.
func (m *SessionManager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) reapLocked() {
	now := m.now()
	for chatID, s := range m.sessions {
		if now.Sub(s.UpdatedAt) > m.ttl {
			delete(m.sessions, chatID)
		}
	}
}
