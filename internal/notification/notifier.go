// Package notification delivers scanner output to external channels
// (Telegram, Redis pub/sub, websocket dashboards, webhooks).
//
// Every sink implements Notifier. Multi fans one Message out to all
// configured sinks; Guarded puts a CircuitBreaker in front of a sink so a
// dead endpoint stops costing a timeout per message.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"signal-scanner/internal/model"
)

// Kind classifies a Message.
type Kind string

const (
	KindAlert      Kind = "alert"       // opportunity found by a scan
	KindEmptyCycle Kind = "empty_cycle" // a scan finished without alerts
	KindWebhook    Kind = "webhook"     // forwarded inbound TradingView alert
)

// WebhookSignal is an inbound TradingView alert after defaults are applied.
type WebhookSignal struct {
	Asset    string `json:"asset"`
	Signal   string `json:"signal"`
	Strategy string `json:"strategy"`
	Time     string `json:"time"`
}

// Message is one notification. Text is the Telegram Markdown rendering;
// structured sinks (Redis, websocket, webhook) send the whole Message as JSON.
type Message struct {
	ID      string             `json:"id"`
	Kind    Kind               `json:"kind"`
	Title   string             `json:"title"`
	Text    string             `json:"text"`
	Time    time.Time          `json:"time"`
	Alert   *model.AlertRecord `json:"alert,omitempty"`
	Webhook *WebhookSignal     `json:"webhook,omitempty"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers a message. Returns error if delivery fails.
	Send(ctx context.Context, msg Message) error
}

// LogNotifier is a simple notifier that logs messages (useful for development).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	if msg.Alert != nil {
		a := msg.Alert
		log.Printf("[notify] [%s] %s: %s ask=%.8g spread=%.2f%% rsi=%.2f direction=%s reversal=%v",
			msg.Kind, msg.Title, a.Symbol, a.Ask, a.SpreadPct, a.RSI, a.Direction, a.Reversal)
		return nil
	}
	log.Printf("[notify] [%s] %s", msg.Kind, msg.Title)
	return nil
}

// Sink is a named Notifier. The name labels failure metrics and logs.
type Sink struct {
	Name     string
	Notifier Notifier
}

// Multi sends every message to all sinks in order. A failing sink does not
// stop delivery to the rest.
type Multi struct {
	sinks []Sink

	// OnFailure is called once per failed sink (optional).
	OnFailure func(sink string, err error)
}

// NewMulti creates a fan-out notifier over sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Add appends a sink.
func (m *Multi) Add(name string, n Notifier) {
	m.sinks = append(m.sinks, Sink{Name: name, Notifier: n})
}

// Names returns the configured sink names in delivery order.
func (m *Multi) Names() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name
	}
	return names
}

// Send delivers msg to every sink and joins their errors.
func (m *Multi) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Notifier.Send(ctx, msg); err != nil {
			if m.OnFailure != nil {
				m.OnFailure(s.Name, err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
