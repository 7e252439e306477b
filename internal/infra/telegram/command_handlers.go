// internal/infra/telegram/command_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"daily_survey_bot/internal/app"
	"daily_survey_bot/internal/domain/timezone"
	idb "daily_survey_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterCommandHandlers wires the bot commands. Every inbound command
// upserts the sender, so handles stay fresh and the scheduler sees new users
// on its next tick.
func RegisterCommandHandlers(
	ctx context.Context,
	b *telebot.Bot,
	userService *app.UserService,
	surveyService *app.SurveyService,
	baseLogger *logrus.Entry,
) {
	b.Handle("/start", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/start", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		if _, err := userService.Register(ctx, c.Sender().ID, c.Sender().Username); err != nil {
			logCtx.WithError(err).Error("Failed to register user")
			return c.Send("Произошла ошибка. Пожалуйста, попробуйте позже.")
		}
		return c.Send(TextGreeting)
	})

	b.Handle("/timezone", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/timezone", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		if _, err := userService.Register(ctx, c.Sender().ID, c.Sender().Username); err != nil {
			logCtx.WithError(err).Error("Failed to register user")
			return c.Send("Произошла ошибка. Пожалуйста, попробуйте позже.")
		}

		raw := strings.TrimSpace(strings.Join(c.Args(), " "))
		if raw == "" {
			return c.Send(TextTimezoneUsage)
		}

		normalized, err := userService.SetTimezone(ctx, c.Sender().ID, raw)
		if err != nil {
			if errors.Is(err, timezone.ErrInvalidTimezone) {
				logCtx.WithField("input", raw).Warn("Invalid timezone input")
				return c.Send(TextTimezoneInvalid)
			}
			logCtx.WithError(err).Error("Failed to set timezone")
			return c.Send("Произошла ошибка. Пожалуйста, попробуйте позже.")
		}
		return c.Send(fmt.Sprintf("Таймзона обновлена: <b>%s</b>", normalized), &telebot.SendOptions{ParseMode: telebot.ModeHTML})
	})

	b.Handle("/result", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/result", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		if _, err := userService.Register(ctx, c.Sender().ID, c.Sender().Username); err != nil {
			logCtx.WithError(err).Error("Failed to register user")
			return c.Send("Произошла ошибка. Пожалуйста, попробуйте позже.")
		}

		surveyID, err := surveyService.GetOrCreateTodaySurvey(ctx, c.Sender().ID)
		if err != nil {
			if errors.Is(err, app.ErrSurveyAlreadyCompleted) {
				return c.Send(TextSurveyAlreadyDone)
			}
			logCtx.WithError(err).Error("Failed to get or create today's survey")
			return c.Send("Произошла ошибка. Пожалуйста, попробуйте позже.")
		}
		logCtx.WithField("survey_id", surveyID).Info("Early survey started")

		if err := c.Send(TextEarlySurvey); err != nil {
			return err
		}
		return c.Send(TextMoodQuestion, &telebot.SendOptions{ReplyMarkup: MoodKeyboard(SurveyRef(surveyID))})
	})

	b.Handle("/test", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/test", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		if _, err := userService.Register(ctx, c.Sender().ID, c.Sender().Username); err != nil {
			logCtx.WithError(err).Error("Failed to register user")
			return c.Send("Произошла ошибка. Пожалуйста, попробуйте позже.")
		}

		if err := c.Send(TextTestIntro); err != nil {
			return err
		}
		return c.Send(TextMoodQuestion, &telebot.SendOptions{ReplyMarkup: MoodKeyboard(TestRef)})
	})

	b.Handle("/stats", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/stats", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		period := "day"
		if args := c.Args(); len(args) > 0 {
			period = strings.ToLower(strings.TrimSpace(args[0]))
		}

		report, err := surveyService.CollectStats(ctx, c.Sender().ID, period)
		if err != nil {
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				logCtx.Warn("Unauthorized /stats attempt")
				return c.Send(TextStatsAdminOnly)
			case errors.Is(err, app.ErrInvalidPeriod):
				return c.Send(TextStatsUsage)
			default:
				logCtx.WithError(err).Error("Failed to collect stats")
				return c.Send("Произошла ошибка. Пожалуйста, попробуйте позже.")
			}
		}
		return c.Send(StatsText(report), &telebot.SendOptions{ParseMode: telebot.ModeHTML})
	})

	b.Handle("/remove_user", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/remove_user", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		args := c.Args()
		if len(args) != 1 {
			return c.Send(TextRemoveUserUsage)
		}
		targetID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || targetID <= 0 {
			return c.Send(TextRemoveUserUsage)
		}

		removed, err := userService.RemoveUser(ctx, c.Sender().ID, targetID)
		if err != nil {
			if errors.Is(err, app.ErrAdminNotAuthorized) {
				logCtx.Warn("Unauthorized /remove_user attempt")
				return c.Send(TextAdminOnly)
			}
			if errors.Is(err, idb.ErrUserNotFound) {
				return c.Send(TextUserNotFound)
			}
			logCtx.WithError(err).Error("Failed to remove user")
			return c.Send("Произошла ошибка. Пожалуйста, попробуйте позже.")
		}
		if !removed {
			return c.Send(TextUserNotFound)
		}

		logCtx.WithField("removed_telegram_id", targetID).Info("User removed")
		return c.Send(fmt.Sprintf("Пользователь %d удален. Бот больше не будет ему писать.", targetID))
	})
}
