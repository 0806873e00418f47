// Package notify delivers best-effort job notifications over Telegram.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/config"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram posts messages to a Telegram chat through the Bot API. Delivery is
// fire-and-forget: failures are logged and never fail a distribution run.
// A nil *Telegram is valid and sends nothing.
type Telegram struct {
	log    *slog.Logger
	http   *resty.Client
	token  string
	chatID string
}

// NewTelegram returns a notifier, or nil when no bot token and chat id are
// configured.
func NewTelegram(cfg config.Config, log *slog.Logger) *Telegram {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == "" {
		return nil
	}
	return &Telegram{
		log: log,
		http: resty.New().
			SetBaseURL(telegramAPIBase).
			SetTimeout(cfg.HTTPTimeout).
			SetRetryCount(cfg.MaxRetries),
		token:  cfg.TelegramBotToken,
		chatID: cfg.TelegramChatID,
	}
}

// Notify sends a plain-text message to the configured chat.
func (t *Telegram) Notify(ctx context.Context, text string) {
	if t == nil {
		return
	}

	resp, err := t.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": t.chatID,
			"text":    text,
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", t.token))
	if err != nil {
		t.log.Warn("Failed to send Telegram notification", "error", err)
		return
	}
	if resp.IsError() {
		t.log.Warn("Telegram API rejected notification", "status", resp.StatusCode())
	}
}
