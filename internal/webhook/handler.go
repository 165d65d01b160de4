// Package webhook receives TradingView alerts over HTTP and forwards them
// to the notification sinks. It never touches the indicator engine.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"signal-scanner/internal/notification"
)

const maxBody = 64 << 10

// Defaults applied to missing payload fields.
const (
	DefaultAsset    = "N/A"
	DefaultSignal   = "No signal"
	DefaultStrategy = "Unknown"
)

// ErrInvalidPayload is returned by ParseSignal for bodies that are not a
// JSON object.
var ErrInvalidPayload = errors.New("webhook payload must be a JSON object")

// ParseSignal extracts {ativo, sinal, estrategia, time} from body. Missing
// fields take their defaults; the time defaults to now as HH:MM.
func ParseSignal(body []byte, now time.Time) (notification.WebhookSignal, error) {
	if !gjson.ValidBytes(body) {
		return notification.WebhookSignal{}, ErrInvalidPayload
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return notification.WebhookSignal{}, ErrInvalidPayload
	}

	field := func(key, def string) string {
		v := root.Get(key)
		if !v.Exists() || v.Type == gjson.Null {
			return def
		}
		return v.String()
	}

	return notification.WebhookSignal{
		Asset:    strings.ToUpper(field("ativo", DefaultAsset)),
		Signal:   field("sinal", DefaultSignal),
		Strategy: field("estrategia", DefaultStrategy),
		Time:     field("time", now.Format("15:04")),
	}, nil
}

// Handler serves POST /webhook.
type Handler struct {
	notifier notification.Notifier
	timeout  time.Duration
	now      func() time.Time
}

// NewHandler creates a handler forwarding to n.
func NewHandler(n notification.Notifier) *Handler {
	return &Handler{notifier: n, timeout: 15 * time.Second, now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"status": "error", "error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "read body"})
		return
	}

	now := h.now()
	sig, err := ParseSignal(body, now)
	if err != nil {
		log.Printf("[webhook] rejected payload: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := h.notifier.Send(ctx, notification.WebhookMessage(sig, now)); err != nil {
		log.Printf("[webhook] forward %s failed: %v", sig.Asset, err)
	} else {
		log.Printf("[webhook] forwarded %s signal=%q strategy=%q", sig.Asset, sig.Signal, sig.Strategy)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
