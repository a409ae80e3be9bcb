package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/log"
)

// maxMessageRunes is the Bot API limit on the length of a text message.
const maxMessageRunes = 4096

// API is the subset of *tgbotapi.BotAPI used to deliver replies.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Sender delivers bot replies through the Bot API.
type Sender struct {
	api    API
	logger *log.Logger
}

var _ bot.Sender = (*Sender)(nil)

func NewSender(api API, logger *log.Logger) *Sender {
	if logger == nil {
		logger = log.Discard()
	}
	return &Sender{api: api, logger: logger.WithComponent(log.ComponentBot)}
}

// Send answers the callback, if any, then delivers the text, edit or
// document carried by r.
func (s *Sender) Send(ctx context.Context, r bot.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.CallbackID != "" {
		if _, err := s.api.Request(tgbotapi.NewCallback(r.CallbackID, r.CallbackText)); err != nil {
			return fmt.Errorf("answer callback: %w", err)
		}
	}

	switch {
	case r.Document != nil:
		doc := tgbotapi.NewDocument(r.ChatID, tgbotapi.FileBytes{Name: r.Document.Name, Bytes: r.Document.Content})
		doc.Caption = r.Document.Caption
		if _, err := s.api.Send(doc); err != nil {
			return fmt.Errorf("send document: %w", err)
		}

	case r.Text != "" && r.EditMessageID != 0:
		return s.edit(r)

	case r.Text != "":
		for i, chunk := range splitText(r.Text, maxMessageRunes) {
			msg := tgbotapi.NewMessage(r.ChatID, chunk)
			// the keyboard goes on the first chunk so edits target it
			if kb := keyboard(r.Buttons); kb != nil && i == 0 {
				msg.ReplyMarkup = *kb
			}
			if _, err := s.api.Send(msg); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}
	return nil
}

func (s *Sender) edit(r bot.Reply) error {
	text := r.Text
	if chunks := splitText(text, maxMessageRunes); len(chunks) > 1 {
		text = chunks[0]
	}
	var cfg tgbotapi.EditMessageTextConfig
	if kb := keyboard(r.Buttons); kb != nil {
		cfg = tgbotapi.NewEditMessageTextAndMarkup(r.ChatID, r.EditMessageID, text, *kb)
	} else {
		cfg = tgbotapi.NewEditMessageText(r.ChatID, r.EditMessageID, text)
	}
	if _, err := s.api.Send(cfg); err != nil {
		if isNotModified(err) {
			s.logger.Debug("Edit skipped, message unchanged", log.FieldChatID, r.ChatID)
			return nil
		}
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// isNotModified matches the API error for an edit with identical content.
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// splitText cuts text into chunks of at most limit runes, preferring line
// boundaries.
func splitText(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}
	var chunks []string
	var cur []rune
	for _, line := range strings.SplitAfter(text, "\n") {
		lr := []rune(line)
		for len(lr) > limit {
			if len(cur) > 0 {
				chunks = append(chunks, string(cur))
				cur = nil
			}
			chunks = append(chunks, string(lr[:limit]))
			lr = lr[limit:]
		}
		if len(cur)+len(lr) > limit {
			chunks = append(chunks, string(cur))
			cur = nil
		}
		cur = append(cur, lr...)
	}
	if len(cur) > 0 {
		chunks = append(chunks, string(cur))
	}
	return chunks
}
