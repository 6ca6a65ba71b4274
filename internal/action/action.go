package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrExit is returned by the Exit action. The bot loop stops and hands it to
// the process entry point, which shuts down cleanly.
var ErrExit = errors.New("exit requested")

// Action is a side effect a Limit can trigger.
type Action interface {
	Run(ctx context.Context) error
	String() string
}

// Sleep blocks the caller for a fixed duration. A cancelled context ends
// the sleep early with the context error.
type Sleep struct {
	duration time.Duration
	wait     func(ctx context.Context, d time.Duration) error
}

// NewSleep returns a Sleep action for d.
func NewSleep(d time.Duration) *Sleep {
	return &Sleep{duration: d, wait: waitContext}
}

func (s *Sleep) Run(ctx context.Context) error {
	return s.wait(ctx, s.duration)
}

func (s *Sleep) String() string {
	return fmt.Sprintf("Sleep, duration %d sec", int64(s.duration/time.Second))
}

func waitContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Exit asks the process to stop.
type Exit struct{}

func (Exit) Run(context.Context) error { return ErrExit }

func (Exit) String() string { return "Exit" }

// Noop does nothing.
type Noop struct{}

func (Noop) Run(context.Context) error { return nil }

func (Noop) String() string { return "Noop" }

// Composite runs its actions in order and stops at the first error, so an
// Exit in the middle prevents the remaining actions from running.
type Composite struct {
	actions []Action
}

// NewComposite returns a Composite over the given actions.
func NewComposite(actions ...Action) *Composite {
	return &Composite{actions: actions}
}

func (c *Composite) Run(ctx context.Context) error {
	for _, a := range c.actions {
		if err := a.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Composite) String() string {
	names := make([]string, 0, len(c.actions))
	for _, a := range c.actions {
		names = append(names, a.String())
	}
	return "Composite[" + strings.Join(names, ", ") + "]"
}

// Logging records the wrapped action's description before running it.
type Logging struct {
	action Action
	logger *slog.Logger
}

// NewLogging wraps action with a debug record.
func NewLogging(action Action, logger *slog.Logger) *Logging {
	return &Logging{action: action, logger: logger}
}

func (l *Logging) Run(ctx context.Context) error {
	l.logger.DebugContext(ctx, "running action", slog.String("action", l.action.String()))
	return l.action.Run(ctx)
}

func (l *Logging) String() string { return l.action.String() }

// Parse builds an action from its configuration name.
func Parse(name string, sleep time.Duration) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "exit":
		return Exit{}, nil
	case "sleep":
		return NewSleep(sleep), nil
	case "noop", "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("action: unknown action %q", name)
	}
}
