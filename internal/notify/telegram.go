package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const telegramAPI = "https://api.telegram.org"

// TelegramSender posts alerts to a chat through the Telegram Bot API.
type TelegramSender struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

// NewTelegramSender creates a TelegramSender for the given bot token and chat.
func NewTelegramSender(token, chatID string) *TelegramSender {
	return &TelegramSender{
		baseURL: telegramAPI,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: sendTimeout},
	}
}

// Send calls sendMessage with the title in bold.
func (t *TelegramSender) Send(ctx context.Context, title, message string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.baseURL, "/"), t.token)
	return postJSON(ctx, t.client, t.Name(), url, map[string]string{
		"chat_id":    t.chatID,
		"text":       fmt.Sprintf("*%s*\n%s", title, message),
		"parse_mode": "Markdown",
	})
}

func (t *TelegramSender) Name() string { return "telegram" }
