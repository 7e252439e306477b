// internal/infra/telegram/survey_handlers.go
package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"daily_survey_bot/internal/app"
	"daily_survey_bot/internal/domain/scoring"
	domainTelegram "daily_survey_bot/internal/domain/telegram"
	idb "daily_survey_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterSurveyHandlers wires the conversation state machine: the callback
// events that open, branch and close a session, and the free-text events
// that collect the four counts.
func RegisterSurveyHandlers(
	ctx context.Context,
	b *telebot.Bot,
	surveyService *app.SurveyService,
	sessions *SessionManager,
	tgClient domainTelegram.Client,
	baseLogger *logrus.Entry,
) {
	h := &surveyHandlers{
		ctx:      ctx,
		service:  surveyService,
		sessions: sessions,
		client:   tgClient,
		logger:   baseLogger,
	}

	b.Handle(telebot.OnCallback, h.handleCallback)
	b.Handle(telebot.OnText, h.handleText)
}

type surveyHandlers struct {
	ctx      context.Context
	service  *app.SurveyService
	sessions *SessionManager
	client   domainTelegram.Client
	logger   *logrus.Entry
}

func (h *surveyHandlers) handleCallback(c telebot.Context) error {
	data := strings.TrimPrefix(c.Callback().Data, "\f")

	switch {
	case strings.HasPrefix(data, "mood:"):
		return h.moodSelected(c, data)
	case strings.HasPrefix(data, "mode:"):
		return h.modeSelected(c, data)
	case data == "survey_confirm:submit":
		return h.submit(c)
	case data == "survey_confirm:restart":
		return h.restart(c)
	default:
		h.logger.WithField("data", data).Warn("Unhandled callback payload")
		return c.Respond(&telebot.CallbackResponse{Text: "Неизвестное действие."})
	}
}

// moodSelected opens a session. The payload carries either a survey id or
// the test marker, so a lost session is recoverable only by /result or /test.
func (h *surveyHandlers) moodSelected(c telebot.Context, data string) error {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return c.Respond(&telebot.CallbackResponse{Text: "Ошибка обработки ответа."})
	}
	ref, moodTag := parts[1], parts[2]

	mood, ok := scoring.ColorFromTag(moodTag)
	if !ok {
		return c.Respond(&telebot.CallbackResponse{Text: "Ошибка обработки ответа."})
	}

	isTest := ref == TestRef
	var surveyID int64
	if !isTest {
		var err error
		surveyID, err = strconv.ParseInt(ref, 10, 64)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: "Ошибка ID опроса."})
		}
	}

	h.sessions.Begin(c.Sender().ID, surveyID, isTest, mood)
	h.logger.WithFields(logrus.Fields{
		"sender_id": c.Sender().ID,
		"survey_id": surveyID,
		"is_test":   isTest,
	}).Info("Survey session started")

	if err := c.Send(TextModeQuestion, &telebot.SendOptions{ReplyMarkup: ModeKeyboard(ref)}); err != nil {
		return err
	}
	return c.Respond()
}

func (h *surveyHandlers) modeSelected(c telebot.Context, data string) error {
	session, ok := h.sessions.Get(c.Sender().ID)
	if !ok || session.Step != StepMode {
		return c.Respond(&telebot.CallbackResponse{Text: TextSessionLost})
	}

	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return c.Respond(&telebot.CallbackResponse{Text: "Ошибка обработки ответа."})
	}

	session.Mode = parts[2]
	session.Step = StepCampaigns
	h.sessions.Touch(c.Sender().ID)

	if err := c.Send(TextCampaignsQuestion); err != nil {
		return err
	}
	return c.Respond()
}

// handleText collects the four counting answers. Non-integer input
// re-prompts the same step without advancing.
func (h *surveyHandlers) handleText(c telebot.Context) error {
	session, ok := h.sessions.Get(c.Sender().ID)
	if !ok {
		return nil // Not in a survey conversation; ignore free text.
	}

	value, err := parseCount(c.Text())
	switch session.Step {
	case StepCampaigns:
		if err != nil {
			return c.Send(TextEnterInteger)
		}
		session.Campaigns = value
		session.Step = StepGeo
		h.sessions.Touch(c.Sender().ID)
		return c.Send(TextGeoQuestion)

	case StepGeo:
		if err != nil {
			return c.Send(TextEnterInteger)
		}
		session.Geo = value
		session.Step = StepCreatives
		h.sessions.Touch(c.Sender().ID)
		return c.Send(TextCreativesQuestion)

	case StepCreatives:
		if err != nil {
			return c.Send(TextEnterInteger)
		}
		session.Creatives = value
		session.Step = StepAccounts
		h.sessions.Touch(c.Sender().ID)
		return c.Send(TextAccountsQuestion)

	case StepAccounts:
		if err != nil {
			return c.Send(TextEnterInteger)
		}
		session.Accounts = value
		session.Step = StepConfirm
		h.sessions.Touch(c.Sender().ID)
		return c.Send(DraftText(session), &telebot.SendOptions{
			ParseMode:   telebot.ModeHTML,
			ReplyMarkup: ConfirmKeyboard(),
		})

	default:
		return nil // Waiting on a button, not on text.
	}
}

// restart rewinds to the campaigns step, preserving mood, mode and the
// survey reference already collected.
func (h *surveyHandlers) restart(c telebot.Context) error {
	session, ok := h.sessions.Get(c.Sender().ID)
	if !ok || session.Step != StepConfirm {
		return c.Respond(&telebot.CallbackResponse{Text: TextSessionLost})
	}

	session.Campaigns = 0
	session.Geo = 0
	session.Creatives = 0
	session.Accounts = 0
	session.Step = StepCampaigns
	h.sessions.Touch(c.Sender().ID)

	if err := c.Send(TextRestarting); err != nil {
		return err
	}
	return c.Respond(&telebot.CallbackResponse{Text: "Ок, начинаем заново"})
}

func (h *surveyHandlers) submit(c telebot.Context) error {
	session, ok := h.sessions.Get(c.Sender().ID)
	if !ok || session.Step != StepConfirm {
		return c.Respond(&telebot.CallbackResponse{Text: TextSessionLost})
	}

	logCtx := h.logger.WithFields(logrus.Fields{
		"sender_id": c.Sender().ID,
		"survey_id": session.SurveyID,
		"is_test":   session.IsTest,
	})

	if session.IsTest {
		score := h.service.CalculateScore(session.Mood, session.Campaigns, session.Geo, session.Creatives, session.Accounts)
		text := TestResultText(session, score)
		h.sessions.Clear(c.Sender().ID)
		logCtx.Info("Test survey scored")

		if err := c.Send(text, &telebot.SendOptions{ParseMode: telebot.ModeHTML}); err != nil {
			return err
		}
		return c.Respond(&telebot.CallbackResponse{Text: "Отправлено"})
	}

	result, err := h.service.CompleteSurvey(h.ctx, session.SurveyID, session.Mood,
		session.Campaigns, session.Geo, session.Creatives, session.Accounts)
	mode := session.Mode
	h.sessions.Clear(c.Sender().ID)
	if err != nil {
		if errors.Is(err, idb.ErrSurveyNotFound) {
			logCtx.Warn("Submit for a survey that is no longer pending")
			if err := c.Send(TextSurveyClosed); err != nil {
				return err
			}
			return c.Respond()
		}
		logCtx.WithError(err).Error("Failed to complete survey")
		if err := c.Send("Не удалось завершить опрос. Попробуйте позже."); err != nil {
			return err
		}
		return c.Respond()
	}

	if err := c.Send(CompletionText(result, mode), &telebot.SendOptions{ParseMode: telebot.ModeHTML}); err != nil {
		return err
	}

	// Report fan-out. One failed target must not block the others.
	reportText := ReportText(result, mode)
	for _, target := range h.service.ReportTargets() {
		if err := h.client.SendMessage(target, reportText, &telebot.SendOptions{ParseMode: telebot.ModeHTML}); err != nil {
			logCtx.WithError(err).WithField("target", target).Error("Failed to deliver survey report")
		}
	}
	logCtx.Info("Survey submitted and reported")

	return c.Respond(&telebot.CallbackResponse{Text: "Анкета отправлена"})
}

// parseCount accepts non-negative integers only, mirroring a digits-only check.
func parseCount(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
