// Package notify delivers operator alerts about the bot to chat channels.
// Alerts are filtered by event type so operators receive only the ones they
// subscribed to.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Event types raised by the bot.
const (
	EventBotExit  = "bot_exit"
	EventBotFatal = "bot_fatal"
	EventCooldown = "cooldown"
)

// Sender is one notification channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Alert is a notification about one event.
type Alert struct {
	Event   string
	Title   string
	Message string
	Fields  map[string]string
}

// Body renders the message followed by the fields as sorted key: value lines.
func (a Alert) Body() string {
	if len(a.Fields) == 0 {
		return a.Message
	}
	keys := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(a.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %s", k, a.Fields[k])
	}
	return b.String()
}

// Notifier dispatches alerts to its senders. An empty event list lets every
// event through.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier over senders that forwards the given events.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			allowed[e] = true
		}
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Enabled reports whether alerts for event would be delivered anywhere.
func (n *Notifier) Enabled(event string) bool {
	if len(n.senders) == 0 {
		return false
	}
	return len(n.events) == 0 || n.events[event]
}

// Notify sends alert to every sender. A failing sender does not stop
// delivery to the others; all failures are returned joined.
func (n *Notifier) Notify(ctx context.Context, alert Alert) error {
	if !n.Enabled(alert.Event) {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", alert.Event))
		return nil
	}

	body := alert.Body()
	var errs []error
	for _, s := range n.senders {
		if err := s.Send(ctx, alert.Title, body); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("event", alert.Event),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("event", alert.Event),
		)
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %w", errors.Join(errs...))
	}
	return nil
}
