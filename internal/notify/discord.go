package notify

import (
	"context"
	"fmt"
	"net/http"
)

// DiscordSender posts alerts to a Discord webhook.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordSender creates a DiscordSender for webhookURL.
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: sendTimeout},
	}
}

// Send posts the alert with the title in bold. Discord answers 204 on
// success.
func (d *DiscordSender) Send(ctx context.Context, title, message string) error {
	return postJSON(ctx, d.client, d.Name(), d.webhookURL, map[string]string{
		"content": fmt.Sprintf("**%s**\n%s", title, message),
	})
}

func (d *DiscordSender) Name() string { return "discord" }
