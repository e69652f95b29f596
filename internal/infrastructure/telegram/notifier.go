package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"listradar/internal/config"
	"listradar/internal/ports"
)

// Notifier posts run digests to a Telegram chat via the bot API.
type Notifier struct {
	cfg    config.TelegramConfig
	client *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier wires the bot token and chat identifier from config.
func NewNotifier(cfg config.TelegramConfig) *Notifier {
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishDigest posts a Markdown message to the configured chat.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.cfg.BotToken == "" || n.cfg.ChatID == "" {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.cfg.BotToken)
	form := url.Values{}
	form.Set("chat_id", n.cfg.ChatID)
	form.Set("text", digest)
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
