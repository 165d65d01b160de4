package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTelegramNotifier_Send(t *testing.T) {
	var gotPath string
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42")
	n.apiBase = srv.URL

	msg := AlertMessage(sampleAlert())
	if err := n.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/botTOKEN/sendMessage" {
		t.Errorf("path = %s", gotPath)
	}
	if got["chat_id"] != "42" || got["parse_mode"] != "Markdown" || got["text"] != msg.Text {
		t.Errorf("payload = %v", got)
	}
}

func TestTelegramNotifier_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("BAD", "42")
	n.apiBase = srv.URL
	if err := n.Send(context.Background(), EmptyCycleMessage(t0)); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestWebhookNotifier_Send(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Send(context.Background(), AlertMessage(sampleAlert())); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Kind != KindAlert || got.Alert == nil || got.Alert.Symbol != "BTCUSDT" {
		t.Errorf("received %+v", got)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	if got := escapeMarkdown("a_b*c`d[e]"); got != "a\\_b\\*c\\`d\\[e]" {
		t.Errorf("escapeMarkdown = %q", got)
	}
}
