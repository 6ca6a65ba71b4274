package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type chanBus struct {
	ch chan []byte
}

func (b *chanBus) Publish(_ context.Context, _ string, payload []byte) error {
	b.ch <- payload
	return nil
}

func (b *chanBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return b.ch, nil
}

func startHub(t *testing.T) (*chanBus, *websocket.Conn) {
	t.Helper()
	bus := &chanBus{ch: make(chan []byte, 4)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(bus, logger, Config{Channels: []string{"ch:run"}, Mode: "Trade", Symbol: "BTCUSDT"})

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = hub.Run(ctx)
	}()

	srv := httptest.NewServer(httpHandler(hub))
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-runDone
		srv.Close()
	})
	return bus, conn
}

func readText(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	typ, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if typ != websocket.TextMessage {
		t.Fatalf("message type = %d, want text", typ)
	}
	return data
}

func TestHub_SendsStatusThenRelaysEvents(t *testing.T) {
	bus, conn := startHub(t)

	var status struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(readText(t, conn), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Type != "bot_status" || status.Payload["mode"] != "trade" || status.Payload["symbol"] != "BTCUSDT" {
		t.Fatalf("status = %+v", status)
	}

	event := `{"event":"run_finished","run":1}`
	if err := bus.Publish(context.Background(), "ch:run", []byte(event)); err != nil {
		t.Fatal(err)
	}
	if got := string(readText(t, conn)); got != event {
		t.Fatalf("event = %s", got)
	}
}

func TestClient_IsSubscribed(t *testing.T) {
	c := &client{subs: map[string]bool{"ch:run": true, "ch:audit:*": true}}

	tests := map[string]bool{
		"ch:run":         true,
		"ch:audit:stop":  true,
		"ch:audit":       false,
		"ch:run:details": false,
	}
	for channel, want := range tests {
		if got := c.isSubscribed(channel); got != want {
			t.Errorf("isSubscribed(%q) = %v, want %v", channel, got, want)
		}
	}

	c.handleSubscription(subscribeMsg{Action: "unsubscribe", Channels: []string{"ch:run"}})
	if c.isSubscribed("ch:run") {
		t.Fatal("still subscribed after unsubscribe")
	}
	c.handleSubscription(subscribeMsg{Action: "subscribe", Channels: []string{"ch:run"}})
	if !c.isSubscribed("ch:run") {
		t.Fatal("not subscribed after subscribe")
	}
}

func httpHandler(h *Hub) http.Handler {
	return http.HandlerFunc(h.HandleWS)
}
