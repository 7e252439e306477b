package telegram

import (
	"testing"
	"time"

	"daily_survey_bot/internal/domain/scoring"
)

func TestSessionBeginStartsAtModeStep(t *testing.T) {
	m := NewSessionManager(time.Hour)

	s := m.Begin(100, 7, false, scoring.ColorGreen)
	if s.Step != StepMode {
		t.Fatalf("Step = %s, want %s", s.Step, StepMode)
	}
	if s.SurveyID != 7 || s.IsTest || s.Mood != scoring.ColorGreen {
		t.Fatalf("session = %+v", s)
	}

	got, ok := m.Get(100)
	if !ok || got != s {
		t.Fatal("started session not retrievable")
	}
}

func TestSessionBeginDiscardsPrevious(t *testing.T) {
	m := NewSessionManager(time.Hour)

	first := m.Begin(100, 7, false, scoring.ColorGreen)
	first.Campaigns = 15
	first.Step = StepGeo

	second := m.Begin(100, 8, false, scoring.ColorRed)
	if second.Campaigns != 0 || second.Step != StepMode {
		t.Fatalf("second session carries old draft state: %+v", second)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
}

func TestSessionGetMissingChat(t *testing.T) {
	m := NewSessionManager(time.Hour)
	if _, ok := m.Get(42); ok {
		t.Fatal("Get returned a session for an unknown chat")
	}
}

func TestSessionExpiry(t *testing.T) {
	m := NewSessionManager(time.Hour)
	current := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	m.Begin(100, 7, false, scoring.ColorGreen)

	current = current.Add(30 * time.Minute)
	if _, ok := m.Get(100); !ok {
		t.Fatal("session expired before the TTL")
	}

	current = current.Add(31 * time.Minute)
	if _, ok := m.Get(100); ok {
		t.Fatal("session survived past the TTL")
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want 0 after expiry", m.Len())
	}
}

func TestSessionTouchExtendsTTL(t *testing.T) {
	m := NewSessionManager(time.Hour)
	current := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	m.Begin(100, 7, false, scoring.ColorGreen)

	current = current.Add(50 * time.Minute)
	m.Touch(100)

	current = current.Add(50 * time.Minute)
	if _, ok := m.Get(100); !ok {
		t.Fatal("touched session expired")
	}
}

func TestSessionBeginReapsStaleChats(t *testing.T) {
	m := NewSessionManager(time.Hour)
	current := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	m.Begin(100, 7, false, scoring.ColorGreen)
	m.Begin(200, 8, false, scoring.ColorYellow)

	current = current.Add(2 * time.Hour)
	m.Begin(300, 9, true, scoring.ColorRed)

	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (stale chats reaped on Begin)", m.Len())
	}
	if _, ok := m.Get(300); !ok {
		t.Fatal("fresh session missing")
	}
}

func TestSessionClear(t *testing.T) {
	m := NewSessionManager(time.Hour)
	m.Begin(100, 7, false, scoring.ColorGreen)
	m.Clear(100)
	if _, ok := m.Get(100); ok {
		t.Fatal("cleared session still retrievable")
	}
}
