package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ledgerbot/internal/bot"
)

// ToEvent maps an update to a bot event. Updates the bot does not act on,
// such as edited messages or messages without a sender, report false.
func ToEvent(u tgbotapi.Update) (bot.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.From == nil {
			return bot.Event{}, false
		}
		var chatID int64
		var messageID int
		if q.Message != nil {
			messageID = q.Message.MessageID
			if q.Message.Chat != nil {
				chatID = q.Message.Chat.ID
			}
		}
		if chatID == 0 {
			chatID = q.From.ID
		}
		return bot.CallbackEvent(q.From.ID, chatID, messageID, q.ID, q.Data), true

	case u.Message != nil:
		m := u.Message
		if m.From == nil || m.Chat == nil {
			return bot.Event{}, false
		}
		if m.IsCommand() {
			return bot.CommandEvent(m.From.ID, m.Chat.ID, m.Command(), strings.TrimSpace(m.CommandArguments())), true
		}
		if m.Text == "" {
			return bot.Event{}, false
		}
		return bot.TextEvent(m.From.ID, m.Chat.ID, m.Text), true
	}
	return bot.Event{}, false
}

// keyboard converts button rows to an inline keyboard. It returns nil for
// no buttons.
func keyboard(rows [][]bot.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	kb := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Payload))
		}
		kb = append(kb, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	if len(kb) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(kb...)
	return &markup
}
