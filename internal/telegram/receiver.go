package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/log"
)

// SubmitFunc hands an event to the bot runner.
type SubmitFunc func(ctx context.Context, ev bot.Event) error

// pollTimeout is the long polling timeout in seconds.
const pollTimeout = 60

// Poll receives updates by long polling until ctx is cancelled. Any webhook
// registered for the bot is removed first, since the API refuses getUpdates
// while one is set.
func Poll(ctx context.Context, api *tgbotapi.BotAPI, submit SubmitFunc, logger *log.Logger) error {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentBot)

	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	logger.Info("Receiving updates by long polling")
	return forward(ctx, updates, submit, logger)
}

// forward submits every update from updates until ctx is done or the
// channel closes.
func forward(ctx context.Context, updates <-chan tgbotapi.Update, submit SubmitFunc, logger *log.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := ToEvent(update)
			if !ok {
				logger.Debug("Ignoring update", "update_id", update.UpdateID)
				continue
			}
			if err := submit(ctx, ev); err != nil {
				if errors.Is(err, bot.ErrStopped) || errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Error("Failed to submit event", log.FieldUserID, ev.UserID, log.FieldError, err)
			}
		}
	}
}

// SetWebhook registers url as the bot's webhook.
func SetWebhook(api *tgbotapi.BotAPI, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// UpdateDecoder reads an update from a webhook request. *tgbotapi.BotAPI
// implements it.
type UpdateDecoder interface {
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// WebhookHandler accepts updates pushed by Telegram. It answers 200 for
// updates it ignores so that Telegram does not redeliver them.
func WebhookHandler(decoder UpdateDecoder, submit SubmitFunc, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentBot)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		update, err := decoder.HandleUpdate(r)
		if err != nil {
			logger.Warn("Invalid webhook payload", log.FieldError, err)
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}
		ev, ok := ToEvent(*update)
		if !ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := submit(r.Context(), ev); err != nil {
			logger.Error("Failed to submit event", log.FieldUserID, ev.UserID, log.FieldError, err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
