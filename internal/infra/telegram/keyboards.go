package telegram

import (
	"strconv"

	"gopkg.in/telebot.v3"
)

// TestRef marks a conversation that never touches persistent storage.
const TestRef = "test"

// Mode picker values.
const (
	ModeScaling = "Масштабирование"
	ModeTesting = "Тест"
)

// SurveyRef encodes a survey id for callback payloads.
func SurveyRef(surveyID int64) string {
	return strconv.FormatInt(surveyID, 10)
}

// MoodKeyboard builds the three-button mood picker. Buttons carry raw
// callback payloads of the form mood:<surveyIdOrTest>:<colorTag>.
func MoodKeyboard(ref string) *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{
		InlineKeyboard: [][]telebot.InlineButton{{
			{Text: "🟢", Data: "mood:" + ref + ":🟢"},
			{Text: "🟡", Data: "mood:" + ref + ":🟡"},
			{Text: "🔴", Data: "mood:" + ref + ":🔴"},
		}},
	}
}

// ModeKeyboard builds the two-button mode picker.
func ModeKeyboard(ref string) *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{
		InlineKeyboard: [][]telebot.InlineButton{{
			{Text: ModeScaling, Data: "mode:" + ref + ":" + ModeScaling},
			{Text: ModeTesting, Data: "mode:" + ref + ":" + ModeTesting},
		}},
	}
}

// ConfirmKeyboard builds the submit/restart picker shown with the draft.
func ConfirmKeyboard() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{
		InlineKeyboard: [][]telebot.InlineButton{{
			{Text: "✅ Подтвердить", Data: "survey_confirm:submit"},
			{Text: "✏️ Заполнить заново", Data: "survey_confirm:restart"},
		}},
	}
}
