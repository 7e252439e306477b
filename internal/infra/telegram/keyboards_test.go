package telegram

import (
	"strings"
	"testing"
	"time"

	"daily_survey_bot/internal/app"
	"daily_survey_bot/internal/domain/scoring"
	"daily_survey_bot/internal/domain/survey"
)

func TestSurveyRef(t *testing.T) {
	if got := SurveyRef(42); got != "42" {
		t.Fatalf("SurveyRef(42) = %q", got)
	}
}

func TestMoodKeyboardPayloads(t *testing.T) {
	kb := MoodKeyboard("7")
	if len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 3 {
		t.Fatalf("unexpected keyboard shape: %+v", kb.InlineKeyboard)
	}
	want := []string{"mood:7:🟢", "mood:7:🟡", "mood:7:🔴"}
	for i, btn := range kb.InlineKeyboard[0] {
		if btn.Data != want[i] {
			t.Errorf("button %d payload = %q, want %q", i, btn.Data, want[i])
		}
	}
}

func TestModeKeyboardPayloads(t *testing.T) {
	kb := ModeKeyboard(TestRef)
	row := kb.InlineKeyboard[0]
	if row[0].Data != "mode:test:"+ModeScaling {
		t.Fatalf("scaling payload = %q", row[0].Data)
	}
	if row[1].Data != "mode:test:"+ModeTesting {
		t.Fatalf("testing payload = %q", row[1].Data)
	}
}

func TestConfirmKeyboardPayloads(t *testing.T) {
	kb := ConfirmKeyboard()
	row := kb.InlineKeyboard[0]
	if row[0].Data != "survey_confirm:submit" || row[1].Data != "survey_confirm:restart" {
		t.Fatalf("confirm payloads = %q, %q", row[0].Data, row[1].Data)
	}
}

func TestDraftTextContainsCollectedValues(t *testing.T) {
	s := &Session{
		Mood:      scoring.ColorYellow,
		Mode:      ModeScaling,
		Campaigns: 11,
		Geo:       3,
		Creatives: 2,
		Accounts:  5,
	}
	text := DraftText(s)
	for _, want := range []string{"🟡", ModeScaling, "<b>11</b>", "<b>3</b>", "<b>2</b>", "<b>5</b>"} {
		if !strings.Contains(text, want) {
			t.Errorf("draft text missing %q:\n%s", want, text)
		}
	}
}

func TestCompletionTextCarriesVerdict(t *testing.T) {
	res := &app.CompletionResult{
		Survey: &survey.Survey{
			Date: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
			Answer: &survey.Answer{
				Mood:           string(scoring.ColorGreen),
				CampaignsCount: 20,
				GeoCount:       4,
				CreativesCount: 3,
				AccountsCount:  4,
			},
		},
		Score: scoring.Score(scoring.ColorGreen, 20, 4, 3, 4),
	}
	text := CompletionText(res, ModeScaling)
	if !strings.Contains(text, scoring.MessageGreen) {
		t.Fatalf("completion text missing verdict:\n%s", text)
	}
	if !strings.Contains(text, "(2.00)") {
		t.Fatalf("completion text missing average:\n%s", text)
	}
}

func TestStatsTextEmptyPeriod(t *testing.T) {
	report := &app.StatsReport{
		Period:   "day",
		DateFrom: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
	}
	text := StatsText(report)
	if !strings.Contains(text, "Нет завершенных анкет") {
		t.Fatalf("empty stats text = %s", text)
	}
}

func TestStatsTextListsUsersAndOverall(t *testing.T) {
	report := &app.StatsReport{
		Period:   "week",
		DateFrom: time.Date(2026, 3, 27, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		PerUser: []app.StatsEntry{
			{Username: "alpha", TelegramID: 100, SurveysCount: 2, ScoreAvg: 1.5},
		},
		Overall: &app.StatsEntry{Username: "Общая статистика", SurveysCount: 2, ScoreAvg: 1.5},
	}
	text := StatsText(report)
	for _, want := range []string{"@alpha", "<code>100</code>", "Общая статистика", "Эффективность (avg): <b>1.50</b>"} {
		if !strings.Contains(text, want) {
			t.Errorf("stats text missing %q:\n%s", want, text)
		}
	}
}
