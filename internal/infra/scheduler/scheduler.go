package scheduler

import (
	"context"
	"fmt"
	"time"

	"daily_survey_bot/internal/domain/survey"
	domainTelegram "daily_survey_bot/internal/domain/telegram"
	"daily_survey_bot/internal/domain/user"
	itg "daily_survey_bot/internal/infra/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// DispatchScheduler owns the two periodic triggers: the dispatch-job resync
// tick and the overdue pending-survey scan. Each tick's body is fault-isolated
// from the next tick and each per-user/per-survey item is fault-isolated from
// its siblings.
type DispatchScheduler struct {
	cronEngine     *cron.Cron
	registry       *JobRegistry
	userRepo       user.Repository
	surveyRepo     survey.Repository
	telegramClient domainTelegram.Client
	logger         *logrus.Entry

	cronSpecResync      string
	cronSpecOverdueScan string
	overdueCutoff       time.Duration
	reportTargets       []int64

	now func() time.Time
}

func NewDispatchScheduler(
	registry *JobRegistry,
	ur user.Repository,
	sr survey.Repository,
	tc domainTelegram.Client,
	logger *logrus.Entry,
	cronSpecResync string,
	cronSpecOverdueScan string,
	overdueCutoff time.Duration,
	reportTargets []int64,
) *DispatchScheduler {
	return &DispatchScheduler{
		cronEngine:          cron.New(),
		registry:            registry,
		userRepo:            ur,
		surveyRepo:          sr,
		telegramClient:      tc,
		logger:              logger,
		cronSpecResync:      cronSpecResync,
		cronSpecOverdueScan: cronSpecOverdueScan,
		overdueCutoff:       overdueCutoff,
		reportTargets:       reportTargets,
		now:                 time.Now,
	}
}

// Start registers the periodic triggers and kicks an immediate first resync
// so freshly restarted processes re-derive their dispatch jobs right away.
func (s *DispatchScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpecResync, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := s.ResyncDispatchJobs(ctx); err != nil {
			s.logger.WithError(err).Error("Dispatch resync tick failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add dispatch resync cron job: %w", err)
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecOverdueScan, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.NotifyOverdueSurveys(ctx); err != nil {
			s.logger.WithError(err).Error("Overdue scan tick failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add overdue scan cron job: %w", err)
	}

	s.registry.Start()
	s.cronEngine.Start()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := s.ResyncDispatchJobs(ctx); err != nil {
			s.logger.WithError(err).Error("Initial dispatch resync failed")
		}
	}()

	s.logger.Info("Dispatch scheduler started")
	return nil
}

// Stop halts the periodic triggers and then the one-shot job scheduler.
// Must complete before the storage pool is released.
func (s *DispatchScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	if err := s.registry.Stop(); err != nil {
		s.logger.WithError(err).Error("Job registry shutdown failed")
	}
	s.logger.Info("Dispatch scheduler stopped")
}

// ResyncDispatchJobs derives every user's next local 20:00 instant and books
// a one-shot dispatch job when the key is not already registered. Running it
// twice without time advancing registers nothing new.
func (s *DispatchScheduler) ResyncDispatchJobs(ctx context.Context) error {
	nowUTC := s.now().UTC()
	s.registry.PruneBefore(nowUTC.Add(-24 * time.Hour))

	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users for resync: %w", err)
	}

	for _, u := range users {
		logCtx := s.logger.WithFields(logrus.Fields{"telegram_id": u.TelegramID, "timezone": u.Timezone})

		date, runAt, err := NextDispatch(u.Timezone, nowUTC)
		if err != nil {
			logCtx.WithError(err).Error("Skipping user with unresolvable stored timezone")
			continue
		}

		key := JobKey(u.TelegramID, date)
		if s.registry.Has(key) {
			continue
		}

		userCopy := *u
		if err := s.registry.Register(key, runAt, func() {
			s.runDispatchJob(&userCopy, date)
		}); err != nil {
			logCtx.WithError(err).WithField("job_key", key).Error("Failed to register dispatch job")
			continue
		}
		logCtx.WithFields(logrus.Fields{"job_key": key, "run_at": runAt.Format(time.RFC3339)}).Info("Dispatch job registered")
	}
	return nil
}

// runDispatchJob is the one-shot job body: create the day's survey if absent
// and send the first question. When the survey already exists (e.g. the user
// ran /result early) the send is suppressed.
func (s *DispatchScheduler) runDispatchJob(u *user.User, date time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	logCtx := s.logger.WithFields(logrus.Fields{
		"telegram_id": u.TelegramID,
		"survey_date": date.Format("2006-01-02"),
	})

	sv, created, err := s.surveyRepo.CreateDailyIfAbsent(ctx, u.ID, date)
	if err != nil {
		logCtx.WithError(err).Error("Dispatch job failed to create daily survey")
		return
	}
	if !created {
		logCtx.WithField("survey_id", sv.ID).Info("Dispatch suppressed, survey already exists")
		return
	}

	err = s.telegramClient.SendMessage(u.TelegramID, itg.TextMoodQuestion, &telebot.SendOptions{
		ParseMode:   telebot.ModeHTML,
		ReplyMarkup: itg.MoodKeyboard(itg.SurveyRef(sv.ID)),
	})
	if err != nil {
		logCtx.WithError(err).WithField("survey_id", sv.ID).Error("Failed to send daily survey prompt")
		return
	}
	logCtx.WithField("survey_id", sv.ID).Info("Daily survey dispatched")
}

// NotifyOverdueSurveys escalates pending surveys older than the cutoff to
// every report target, marking each survey so repeat scans never re-alert it.
// One survey's failure never blocks the rest.
func (s *DispatchScheduler) NotifyOverdueSurveys(ctx context.Context) error {
	cutoff := s.now().UTC().Add(-s.overdueCutoff)
	surveys, err := s.surveyRepo.PendingOverdueWithoutAdminNotification(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to query overdue surveys: %w", err)
	}

	for _, sv := range surveys {
		logCtx := s.logger.WithFields(logrus.Fields{"survey_id": sv.ID, "survey_date": sv.Date.Format("2006-01-02")})

		text := itg.OverdueText(sv)
		for _, target := range s.reportTargets {
			if err := s.telegramClient.SendMessage(target, text, &telebot.SendOptions{ParseMode: telebot.ModeHTML}); err != nil {
				logCtx.WithError(err).WithField("target", target).Error("Failed to send overdue escalation")
			}
		}

		if err := s.surveyRepo.MarkAdminNotified(ctx, sv.ID); err != nil {
			logCtx.WithError(err).Error("Failed to mark survey admin-notified")
			continue
		}
		logCtx.Info("Overdue survey escalated")
	}
	return nil
}
