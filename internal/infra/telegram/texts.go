package telegram

import (
	"fmt"
	"strings"

	"daily_survey_bot/internal/app"
	"daily_survey_bot/internal/domain/scoring"
	"daily_survey_bot/internal/domain/survey"
)

// Question prompts, in conversation order.
const (
	TextMoodQuestion      = "1) Настроение"
	TextModeQuestion      = "2) Твой режим, масштабирование или тест ?"
	TextCampaignsQuestion = "3) Сколько компаний запустил?"
	TextGeoQuestion       = "4) Сколько гео запустил?"
	TextCreativesQuestion = "5) Подходы по крео?"
	TextAccountsQuestion  = "6) Сколько кабинетов?"
)

const (
	TextEnterInteger = "Введите целое число"
	TextGreeting     = "Привет! Я бот ежедневного опроса.\n" +
		"Каждый день в 20:00 по вашему часовому поясу я пришлю опрос.\n" +
		"Установить таймзону: /timezone Europe/Warsaw или /timezone +1\n" +
		"Запустить опрос сейчас: /result\n" +
		"Проверка бота: /test"
	TextTimezoneUsage = "Укажите таймзону. Примеры:\n" +
		"• /timezone Europe/Warsaw\n" +
		"• /timezone +1\n" +
		"• /timezone -2"
	TextTimezoneInvalid = "Некорректная таймзона. Используйте IANA (Europe/Warsaw) " +
		"или смещение UTC в формате +1 / -2"
	TextSurveyAlreadyDone = "Опрос за сегодня уже завершен ✅"
	TextEarlySurvey       = "Запускаю досрочный опрос."
	TextTestIntro         = "Тест: запускаю отдельный тестовый опрос (не влияет на /result)."
	TextSurveyClosed      = "Этот опрос уже закрыт."
	TextSessionLost       = "Не удалось восстановить анкету. Начните заново командой /result или /test"
	TextRestarting        = "Заполняем анкету заново.\n" + TextCampaignsQuestion
	TextStatsAdminOnly    = "Команда /stats доступна только администратору."
	TextAdminOnly         = "Команда доступна только администратору."
	TextStatsUsage        = "Использование: /stats [day|week|month]"
	TextRemoveUserUsage   = "Использование: /remove_user <telegram_user_id>"
	TextUserNotFound      = "Пользователь не найден в базе."
)

func surveyUsername(sv *survey.Survey) string {
	if sv.User == nil {
		return "-"
	}
	return sv.User.DisplayName()
}

func surveyUserID(sv *survey.Survey) string {
	if sv.User == nil {
		return "-"
	}
	return fmt.Sprintf("%d", sv.User.TelegramID)
}

// OverdueText renders the admin escalation card for a pending survey that
// crossed the overdue cutoff.
func OverdueText(sv *survey.Survey) string {
	return "<b>⏰ Нет ответа на daily survey более 12 часов</b>\n" +
		fmt.Sprintf("🗓 Дата: <b>%s</b>\n", sv.Date.Format("2006-01-02")) +
		fmt.Sprintf("👤 Пользователь: <b>@%s</b>\n", surveyUsername(sv)) +
		fmt.Sprintf("🆔 user_id: <code>%s</code>", surveyUserID(sv))
}

// DraftText renders the pre-submit summary of a collected session.
func DraftText(s *Session) string {
	return "<b>Проверьте анкету перед отправкой</b>\n\n" +
		fmt.Sprintf("1) Настроение: <b>%s</b>\n", s.Mood) +
		fmt.Sprintf("2) Режим: <b>%s</b>\n", s.Mode) +
		fmt.Sprintf("3) Компаний: <b>%d</b>\n", s.Campaigns) +
		fmt.Sprintf("4) Гео: <b>%d</b>\n", s.Geo) +
		fmt.Sprintf("5) Подходов по крео: <b>%d</b>\n", s.Creatives) +
		fmt.Sprintf("6) Кабинетов: <b>%d</b>\n\n", s.Accounts) +
		"Если все верно — подтвердите отправку."
}

// TestResultText renders the scored-only outcome of a test-mode session.
func TestResultText(s *Session, score scoring.Result) string {
	return "<b>Тестовый опрос завершен</b> ✅\n\n" +
		fmt.Sprintf("Настроение: <b>%s</b>\n", s.Mood) +
		fmt.Sprintf("Режим: <b>%s</b>\n", s.Mode) +
		fmt.Sprintf("Компании: <b>%d</b>\n", s.Campaigns) +
		fmt.Sprintf("Гео: <b>%d</b>\n", s.Geo) +
		fmt.Sprintf("Крео: <b>%d</b>\n", s.Creatives) +
		fmt.Sprintf("Кабинеты: <b>%d</b>\n\n", s.Accounts) +
		fmt.Sprintf("Итог: <b>%s (%.2f)</b>\n", score.FinalColor, score.Average) +
		score.Message + "\n\n" +
		"<i>Это тестовый результат — он не сохранен в БД и не влияет на /result.</i>"
}

// CompletionText renders the user-facing result of a persisted submission.
func CompletionText(res *app.CompletionResult, mode string) string {
	a := res.Survey.Answer
	return "<b>Опрос завершен!</b>\n\n" +
		fmt.Sprintf("Настроение: <b>%s</b>\n", a.Mood) +
		fmt.Sprintf("Режим: <b>%s</b>\n", mode) +
		fmt.Sprintf("Компании: <b>%d</b>\n", a.CampaignsCount) +
		fmt.Sprintf("Гео: <b>%d</b>\n", a.GeoCount) +
		fmt.Sprintf("Крео: <b>%d</b>\n", a.CreativesCount) +
		fmt.Sprintf("Кабинеты: <b>%d</b>\n\n", a.AccountsCount) +
		fmt.Sprintf("Итог: <b>%s (%.2f)</b>\n", res.Score.FinalColor, res.Score.Average) +
		res.Score.Message
}

// ReportText renders the admin report card for a persisted submission.
func ReportText(res *app.CompletionResult, mode string) string {
	sv := res.Survey
	a := sv.Answer
	score := res.Score
	return "<b>📊 Daily Survey Report</b>\n" +
		fmt.Sprintf("🗓 Дата: <b>%s</b>\n", sv.Date.Format("2006-01-02")) +
		fmt.Sprintf("👤 Пользователь: <b>@%s</b>\n", surveyUsername(sv)) +
		fmt.Sprintf("🆔 user_id: <code>%s</code>\n\n", surveyUserID(sv)) +
		"<b>Ответы</b>\n" +
		fmt.Sprintf("• Настроение: %s\n", a.Mood) +
		fmt.Sprintf("• Режим: %s\n", mode) +
		fmt.Sprintf("• Компании: %d → %s\n", a.CampaignsCount, score.CampaignsColor) +
		fmt.Sprintf("• Гео: %d → %s\n", a.GeoCount, score.GeoColor) +
		fmt.Sprintf("• Крео: %d → %s\n", a.CreativesCount, score.CreativesColor) +
		fmt.Sprintf("• Кабинеты: %d → %s\n\n", a.AccountsCount, score.AccountsColor) +
		fmt.Sprintf("<b>Итог:</b> %s <b>(%.2f)</b>\n", score.FinalColor, score.Average) +
		fmt.Sprintf("💬 %s", score.Message)
}

func statsEntryText(header string, e *app.StatsEntry) string {
	return header +
		fmt.Sprintf("• Анкет: <b>%d</b>\n", e.SurveysCount) +
		fmt.Sprintf("• Настроение (avg): <b>%.2f</b>\n", e.MoodAvg) +
		fmt.Sprintf("• Компании (avg): <b>%.2f</b>\n", e.CampaignsAvg) +
		fmt.Sprintf("• Гео (avg): <b>%.2f</b>\n", e.GeoAvg) +
		fmt.Sprintf("• Крео (avg): <b>%.2f</b>\n", e.CreativesAvg) +
		fmt.Sprintf("• Кабинеты (avg): <b>%.2f</b>\n", e.AccountsAvg) +
		fmt.Sprintf("• Эффективность (avg): <b>%.2f</b>", e.ScoreAvg)
}

// StatsText renders the full stats report, or the empty-period notice.
func StatsText(report *app.StatsReport) string {
	rangeText := fmt.Sprintf("%s — %s", report.DateFrom.Format("2006-01-02"), report.DateTo.Format("2006-01-02"))
	if len(report.PerUser) == 0 {
		return fmt.Sprintf("📈 Статистика за <b>%s</b> (%s)\n\n", report.Period, rangeText) +
			"Нет завершенных анкет за выбранный период."
	}

	blocks := []string{
		fmt.Sprintf("📈 <b>Статистика за %s</b>\nПериод: <b>%s</b> — <b>%s</b>\n",
			report.Period, report.DateFrom.Format("2006-01-02"), report.DateTo.Format("2006-01-02")),
	}
	for i := range report.PerUser {
		e := &report.PerUser[i]
		header := fmt.Sprintf("👤 <b>@%s</b> (<code>%d</code>)\n", e.Username, e.TelegramID)
		blocks = append(blocks, statsEntryText(header, e))
	}
	if report.Overall != nil {
		blocks = append(blocks, statsEntryText("🌐 <b>Общая статистика</b>\n", report.Overall))
	}
	return strings.Join(blocks, "\n\n")
}
