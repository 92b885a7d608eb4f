package notification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TelegramNotifier delivers alerts through the Telegram Bot API.
// Messages are sent as plain text so trade details never need escaping.
type TelegramNotifier struct {
	apiURL string
	chatID string
	client *http.Client
}

// NewTelegramNotifier builds a notifier for the given bot token and target
// chat ID (from @BotFather and the chat the bot was added to).
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		apiURL: "https://api.telegram.org/bot" + botToken + "/sendMessage",
		chatID: chatID,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) Send(ctx context.Context, alert Alert) error {
	var text strings.Builder
	if alert.Level != AlertInfo {
		text.WriteString(string(alert.Level))
		text.WriteString(": ")
	}
	text.WriteString(alert.Title)
	if alert.Message != "" {
		text.WriteString("\n")
		text.WriteString(alert.Message)
	}

	form := url.Values{
		"chat_id": {t.chatID},
		"text":    {text.String()},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
