package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"daily_survey_bot/internal/domain/scoring"
	"daily_survey_bot/internal/domain/survey"
	"daily_survey_bot/internal/domain/timezone"
	"daily_survey_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
)

var ErrSurveyAlreadyCompleted = fmt.Errorf("today's survey is already completed")
var ErrInvalidPeriod = fmt.Errorf("invalid stats period")

// CompletionResult carries the outcome of a successful survey submission.
type CompletionResult struct {
	Survey      *survey.Survey // With user and answer loaded
	Score       scoring.Result
	CompletedAt time.Time
}

// StatsEntry is one aggregated row of the stats report: a single user, or
// the overall aggregate across all matching answers.
type StatsEntry struct {
	Username     string
	TelegramID   int64
	SurveysCount int
	MoodAvg      float64
	CampaignsAvg float64
	GeoAvg       float64
	CreativesAvg float64
	AccountsAvg  float64
	ScoreAvg     float64
}

// StatsReport aggregates completed surveys over a trailing window.
type StatsReport struct {
	Period   string
	DateFrom time.Time
	DateTo   time.Time
	PerUser  []StatsEntry
	Overall  *StatsEntry
}

var periodDays = map[string]int{"day": 1, "week": 7, "month": 30}

// SurveyService mediates between the conversation layer, the stores and the
// scoring engine.
type SurveyService struct {
	userRepo        user.Repository
	surveyRepo      survey.Repository
	adminTelegramID int64
	reportChatID    int64
	logger          *logrus.Entry
	now             func() time.Time
}

func NewSurveyService(
	ur user.Repository,
	sr survey.Repository,
	adminID int64,
	reportChatID int64,
	logger *logrus.Entry,
) *SurveyService {
	return &SurveyService{
		userRepo:        ur,
		surveyRepo:      sr,
		adminTelegramID: adminID,
		reportChatID:    reportChatID,
		logger:          logger,
		now:             time.Now,
	}
}

// ReportTargets returns the chat ids every report and escalation is fanned
// out to: the admin, plus the secondary report chat when configured and
// distinct.
func (s *SurveyService) ReportTargets() []int64 {
	if s.reportChatID == 0 || s.reportChatID == s.adminTelegramID {
		return []int64{s.adminTelegramID}
	}
	return []int64{s.adminTelegramID, s.reportChatID}
}

// CalculateScore grades a set of answers without touching storage. Used by
// the test-mode conversation path.
func (s *SurveyService) CalculateScore(mood scoring.Color, campaigns, geo, creatives, accounts int) scoring.Result {
	return scoring.Score(mood, campaigns, geo, creatives, accounts)
}

// GetOrCreateTodaySurvey resolves the user's current local date and returns
// the id of today's pending survey, creating it when absent. Returns
// ErrSurveyAlreadyCompleted when the survey exists and is already answered.
func (s *SurveyService) GetOrCreateTodaySurvey(ctx context.Context, telegramID int64) (int64, error) {
	u, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return 0, err
	}

	localDate, err := timezone.LocalDate(u.Timezone, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to resolve local date for user %d: %w", telegramID, err)
	}

	sv, created, err := s.surveyRepo.CreateDailyIfAbsent(ctx, u.ID, localDate)
	if err != nil {
		return 0, err
	}
	if sv.Status != survey.StatusPending {
		return 0, ErrSurveyAlreadyCompleted
	}
	if created {
		s.logger.WithFields(logrus.Fields{
			"telegram_id": telegramID,
			"survey_id":   sv.ID,
			"survey_date": sv.Date.Format("2006-01-02"),
		}).Info("On-demand survey created")
	}
	return sv.ID, nil
}

// CompleteSurvey scores and persists the collected answers atomically.
// A missing or already answered survey surfaces as ErrSurveyNotFound from
// the store; the second of two concurrent submits gets that error.
func (s *SurveyService) CompleteSurvey(ctx context.Context, surveyID int64, mood scoring.Color, campaigns, geo, creatives, accounts int) (*CompletionResult, error) {
	score := scoring.Score(mood, campaigns, geo, creatives, accounts)

	saved, err := s.surveyRepo.SaveAnswer(ctx, surveyID, survey.Answer{
		Mood:           string(mood),
		CampaignsCount: campaigns,
		GeoCount:       geo,
		CreativesCount: creatives,
		AccountsCount:  accounts,
	})
	if err != nil {
		return nil, err
	}

	completedAt := s.now().UTC()
	if saved.CompletedAt.Valid {
		completedAt = saved.CompletedAt.Time
	}

	s.logger.WithFields(logrus.Fields{
		"survey_id":   surveyID,
		"final_color": string(score.FinalColor),
		"average":     score.Average,
	}).Info("Survey completed")

	return &CompletionResult{Survey: saved, Score: score, CompletedAt: completedAt}, nil
}

// CollectStats aggregates answered surveys over a trailing window of
// 1/7/30 days ending today (UTC date boundary). Admin-only.
func (s *SurveyService) CollectStats(ctx context.Context, performingID int64, period string) (*StatsReport, error) {
	if performingID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	days, ok := periodDays[period]
	if !ok {
		return nil, ErrInvalidPeriod
	}

	nowUTC := s.now().UTC()
	dateTo := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), 0, 0, 0, 0, time.UTC)
	dateFrom := dateTo.AddDate(0, 0, -(days - 1))

	surveys, err := s.surveyRepo.ListAnsweredInRange(ctx, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to list answered surveys for stats: %w", err)
	}

	report := &StatsReport{
		Period:   period,
		DateFrom: dateFrom,
		DateTo:   dateTo,
		PerUser:  make([]StatsEntry, 0),
	}
	if len(surveys) == 0 {
		return report, nil
	}

	grouped := make(map[int64][]*survey.Survey)
	for _, sv := range surveys {
		if sv.User == nil || sv.Answer == nil {
			continue
		}
		grouped[sv.User.TelegramID] = append(grouped[sv.User.TelegramID], sv)
	}

	for telegramID, userSurveys := range grouped {
		report.PerUser = append(report.PerUser, buildStatsEntry(userSurveys, telegramID, ""))
	}
	sort.Slice(report.PerUser, func(i, j int) bool {
		return report.PerUser[i].TelegramID < report.PerUser[j].TelegramID
	})

	overall := buildStatsEntry(surveys, 0, "Общая статистика")
	report.Overall = &overall

	return report, nil
}

func buildStatsEntry(surveys []*survey.Survey, telegramID int64, usernameOverride string) StatsEntry {
	entry := StatsEntry{Username: usernameOverride, TelegramID: telegramID}

	var moodSum, campaignsSum, geoSum, creativesSum, accountsSum, scoreSum float64
	for _, sv := range surveys {
		a := sv.Answer
		if a == nil {
			continue
		}
		entry.SurveysCount++
		moodSum += scoring.Color(a.Mood).Weight()
		campaignsSum += float64(a.CampaignsCount)
		geoSum += float64(a.GeoCount)
		creativesSum += float64(a.CreativesCount)
		accountsSum += float64(a.AccountsCount)
		// The per-answer score is recomputed every time, never read back
		// from storage.
		scoreSum += scoring.Score(scoring.Color(a.Mood), a.CampaignsCount, a.GeoCount, a.CreativesCount, a.AccountsCount).Average

		if entry.Username == "" && sv.User != nil {
			entry.Username = sv.User.DisplayName()
		}
	}
	if entry.Username == "" {
		entry.Username = "-"
	}
	if entry.SurveysCount == 0 {
		return entry
	}

	n := float64(entry.SurveysCount)
	entry.MoodAvg = moodSum / n
	entry.CampaignsAvg = campaignsSum / n
	entry.GeoAvg = geoSum / n
	entry.CreativesAvg = creativesSum / n
	entry.AccountsAvg = accountsSum / n
	entry.ScoreAvg = scoreSum / n
	return entry
}
