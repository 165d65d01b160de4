package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"signal-scanner/internal/model"
)

const (
	dateLayout = "02/01/2006"
	timeLayout = "15:04"
)

// AlertMessage renders an opportunity for delivery.
func AlertMessage(a *model.AlertRecord) Message {
	reversal := "No"
	if a.Reversal {
		reversal = "Yes"
	}

	var b strings.Builder
	b.WriteString("📊 *Market Alert*\n\n")
	fmt.Fprintf(&b, "*Asset:* %s\n", escapeMarkdown(a.Symbol))
	fmt.Fprintf(&b, "*Date:* %s\n", a.Time.Format(dateLayout))
	fmt.Fprintf(&b, "*Time:* %s\n", a.Time.Format(timeLayout))
	fmt.Fprintf(&b, "*Spread:* %.2f%%\n", a.SpreadPct)
	fmt.Fprintf(&b, "*Volume:* %.2f\n", a.Volume)
	fmt.Fprintf(&b, "*Direction:* %s\n", a.Direction)
	fmt.Fprintf(&b, "*Reversal start:* %s\n", reversal)
	fmt.Fprintf(&b, "🔗 [View chart on TradingView](%s)", model.ChartURL(a.Symbol))

	return Message{
		ID:    a.ID,
		Kind:  KindAlert,
		Title: "Market Alert " + a.Symbol,
		Text:  b.String(),
		Time:  a.Time,
		Alert: a,
	}
}

// EmptyCycleMessage reports a scan that found nothing.
func EmptyCycleMessage(at time.Time) Message {
	text := fmt.Sprintf("⛔ No opportunity detected at %s.", at.Format(timeLayout))
	return Message{
		ID:    uuid.NewString(),
		Kind:  KindEmptyCycle,
		Title: "No opportunity",
		Text:  text,
		Time:  at,
	}
}

// WebhookMessage renders a forwarded TradingView alert.
func WebhookMessage(sig WebhookSignal, at time.Time) Message {
	// Code spans cannot be escaped in legacy Markdown, so backticks are dropped.
	asset := strings.ReplaceAll(sig.Asset, "`", "")

	var b strings.Builder
	b.WriteString("🚨 *TradingView Alert Received*\n")
	fmt.Fprintf(&b, "*Asset:* `%s`\n", asset)
	fmt.Fprintf(&b, "*Signal:* %s\n", escapeMarkdown(sig.Signal))
	fmt.Fprintf(&b, "*Strategy:* %s\n", escapeMarkdown(sig.Strategy))
	fmt.Fprintf(&b, "*Time:* %s\n", escapeMarkdown(sig.Time))
	fmt.Fprintf(&b, "🔗 [View chart](%s)", model.ChartURL(asset))

	return Message{
		ID:      uuid.NewString(),
		Kind:    KindWebhook,
		Title:   "TradingView " + sig.Asset,
		Text:    b.String(),
		Time:    at,
		Webhook: &sig,
	}
}
