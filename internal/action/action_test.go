package action

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type recordingAction struct {
	name string
	runs *[]string
	err  error
}

func (r recordingAction) Run(context.Context) error {
	*r.runs = append(*r.runs, r.name)
	return r.err
}

func (r recordingAction) String() string { return r.name }

func TestExit(t *testing.T) {
	if err := (Exit{}).Run(context.Background()); !errors.Is(err, ErrExit) {
		t.Fatalf("Exit.Run = %v, want ErrExit", err)
	}
}

func TestSleep_Waits(t *testing.T) {
	var got time.Duration
	s := NewSleep(600 * time.Second)
	s.wait = func(_ context.Context, d time.Duration) error {
		got = d
		return nil
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 600*time.Second {
		t.Errorf("slept %s, want 10m", got)
	}
	if s.String() != "Sleep, duration 600 sec" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewSleep(time.Hour).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run on cancelled ctx = %v", err)
	}
}

func TestComposite_StopsAtExit(t *testing.T) {
	var runs []string
	c := NewComposite(
		recordingAction{name: "first", runs: &runs},
		recordingAction{name: "exit", runs: &runs, err: ErrExit},
		recordingAction{name: "never", runs: &runs},
	)
	if err := c.Run(context.Background()); !errors.Is(err, ErrExit) {
		t.Fatalf("Run = %v, want ErrExit", err)
	}
	if strings.Join(runs, ",") != "first,exit" {
		t.Errorf("runs = %v", runs)
	}
	if c.String() != "Composite[first, exit, never]" {
		t.Errorf("String() = %q", c.String())
	}
}

func TestLogging_RecordsDescription(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := NewLogging(Noop{}, logger).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(buf.String(), "action=Noop") {
		t.Errorf("log output %q does not mention the action", buf.String())
	}
}

func TestParse(t *testing.T) {
	cases := map[string]string{"exit": "Exit", "SLEEP": "Sleep, duration 5 sec", "noop": "Noop", "": "Noop"}
	for in, want := range cases {
		a, err := Parse(in, 5*time.Second)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if a.String() != want {
			t.Errorf("Parse(%q) = %q, want %q", in, a.String(), want)
		}
	}
	if _, err := Parse("shutdown", 0); err == nil {
		t.Errorf("Parse(shutdown) should fail")
	}
}
