// Package scanner runs periodic scan cycles over the market universe: it
// fetches each instrument's book and candles, computes indicators, applies
// the validity gate and the opportunity rule, and hands the resulting
// alerts to a notifier once the whole universe has been scanned.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"signal-scanner/internal/indicator"
	"signal-scanner/internal/logger"
	"signal-scanner/internal/marketdata"
	"signal-scanner/internal/metrics"
	"signal-scanner/internal/model"
	"signal-scanner/internal/notification"
	"signal-scanner/internal/strategy"
)

// Scanner is the cycle orchestrator. A Scanner runs at most one cycle at a
// time; each cycle is independent and keeps no state from the previous one.
type Scanner struct {
	cfg      Config
	md       model.MarketData
	notifier notification.Notifier

	prom   *metrics.Metrics
	health *metrics.HealthStatus
	now    func() time.Time

	mu sync.Mutex // serialises cycles
}

// Option customises a Scanner.
type Option func(*Scanner)

// WithMetrics records cycle and instrument metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scanner) { s.prom = m }
}

// WithHealth reports every finished cycle to h.
func WithHealth(h *metrics.HealthStatus) Option {
	return func(s *Scanner) { s.health = h }
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// New creates a Scanner reading from md and notifying n.
func New(cfg Config, md model.MarketData, n notification.Notifier, opts ...Option) *Scanner {
	s := &Scanner{
		cfg:      cfg.withDefaults(),
		md:       md,
		notifier: n,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes a cycle immediately and then one per Interval until ctx is
// cancelled. Cycles never overlap: the next one starts only after the
// running one has returned.
func (s *Scanner) Run(ctx context.Context) error {
	log.Printf("[scanner] starting: interval=%s candles=%s x%d workers=%d min_spread=%.2f%%",
		s.cfg.Interval, s.cfg.CandleInterval, s.cfg.CandleLimit, s.cfg.Workers, s.cfg.MinSpreadPct)

	s.runLogged(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[scanner] stopped")
			return nil
		case <-ticker.C:
			s.runLogged(ctx)
		}
	}
}

func (s *Scanner) runLogged(ctx context.Context) {
	if _, err := s.RunCycle(ctx); err != nil && ctx.Err() == nil {
		log.Printf("[scanner] cycle failed: %v", err)
	}
}

// RunCycle scans the universe once and sends the notifications. It returns
// an error only when the universe itself could not be listed; per
// instrument failures are reported as Outcomes.
//
// CycleTimeout bounds the listing and the scan. Alerts found before it
// expires are still delivered, each send bounded by NotifyTimeout and
// cancelled only with ctx.
func (s *Scanner) RunCycle(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &Report{ID: uuid.NewString(), Started: s.now()}
	ctx = logger.WithTraceID(ctx, report.ID)

	if err := s.scan(ctx, report); err != nil {
		report.Finished = s.now()
		s.record(report, err)
		return report, err
	}

	s.notify(ctx, report)
	report.Finished = s.now()
	s.record(report, nil)
	return report, nil
}

// scan lists the universe and scans it under the cycle deadline.
func (s *Scanner) scan(ctx context.Context, report *Report) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CycleTimeout)
	defer cancel()

	universe, err := s.universe(ctx)
	if err != nil {
		return err
	}
	slog.Info("scan cycle started", append(logger.LogWithTrace(ctx), slog.Int("instruments", len(universe)))...)

	report.Outcomes = s.scanAll(ctx, universe)
	for _, o := range report.Outcomes {
		if o.Alert != nil {
			report.Alerts = append(report.Alerts, o.Alert)
		}
	}
	return nil
}

func (s *Scanner) universe(ctx context.Context) ([]string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	symbols, err := s.md.Symbols(fetchCtx)
	s.observeFetch("symbols", start)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return marketdata.FilterQuote(symbols, s.cfg.QuoteSuffix), nil
}

// scanAll fans the universe out to the worker pool. Outcomes are written by
// index so the result keeps the universe's symbol order.
func (s *Scanner) scanAll(ctx context.Context, universe []string) []Outcome {
	outcomes := make([]Outcome, len(universe))
	jobs := make(chan int)

	workers := s.cfg.Workers
	if workers > len(universe) {
		workers = len(universe)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = s.scanOne(ctx, universe[i])
			}
		}()
	}
	for i := range universe {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// scanOne runs one instrument through book check, spread filter, candle
// fetch, indicators, gate and rule.
func (s *Scanner) scanOne(ctx context.Context, symbol string) Outcome {
	out := Outcome{Symbol: symbol}

	book, err := s.fetchBook(ctx, symbol)
	if err != nil {
		out.Reason, out.Err = SkipBookFetch, err
		return out
	}
	if err := book.Valid(); err != nil {
		out.Reason, out.Err = SkipBookInvalid, err
		return out
	}
	spread := book.SpreadPct()
	if spread < s.cfg.MinSpreadPct {
		out.Reason = SkipSpreadFiltered
		return out
	}

	series, err := s.fetchCandles(ctx, symbol)
	if err != nil {
		out.Reason, out.Err = SkipCandleFetch, err
		if errors.Is(err, marketdata.ErrParse) {
			out.Reason = SkipCandleParse
		}
		return out
	}

	res := indicator.Compute(series, s.cfg.Indicators)
	if err := strategy.Validate(res); err != nil {
		out.Reason, out.Err = SkipIncompleteIndicators, err
		var rej *strategy.RejectError
		if errors.As(err, &rej) && rej.Reason == strategy.ReasonInsufficientHistory {
			out.Reason = SkipInsufficientHistory
		}
		return out
	}

	latest := res.Latest()
	alert := s.cfg.Rule.Evaluate(strategy.Input{
		Symbol:    symbol,
		Interval:  s.cfg.CandleInterval,
		Latest:    latest,
		Previous:  res.Previous(),
		Volume:    latest.Volume,
		Ask:       book.Ask,
		SpreadPct: spread,
		Now:       s.now(),
	})
	if alert == nil {
		out.Reason = SkipNoSignal
		return out
	}
	out.Reason, out.Alert = Alerted, alert
	return out
}

func (s *Scanner) fetchBook(ctx context.Context, symbol string) (model.BookTop, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	start := time.Now()
	book, err := s.md.BookTop(fetchCtx, symbol)
	s.observeFetch("book", start)
	return book, err
}

func (s *Scanner) fetchCandles(ctx context.Context, symbol string) (model.CandleSeries, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	start := time.Now()
	series, err := s.md.Candles(fetchCtx, symbol, s.cfg.CandleInterval, s.cfg.CandleLimit)
	s.observeFetch("candles", start)
	return series, err
}

// notify sends every alert in symbol order, or the empty-cycle notice.
// Failures are logged and never abort the cycle.
func (s *Scanner) notify(ctx context.Context, report *Report) {
	if s.notifier == nil {
		return
	}
	var msgs []notification.Message
	for _, a := range report.Alerts {
		msgs = append(msgs, notification.AlertMessage(a))
	}
	if len(msgs) == 0 && s.cfg.NotifyEmptyCycle {
		msgs = append(msgs, notification.EmptyCycleMessage(s.now()))
	}
	for _, msg := range msgs {
		if ctx.Err() != nil {
			slog.Warn("notification skipped, shutting down", append(logger.LogWithTrace(ctx),
				slog.String("kind", string(msg.Kind)))...)
			continue
		}
		sendCtx, cancel := context.WithTimeout(ctx, s.cfg.NotifyTimeout)
		err := s.notifier.Send(sendCtx, msg)
		cancel()
		if err != nil {
			slog.Warn("notification failed", append(logger.LogWithTrace(ctx),
				slog.String("kind", string(msg.Kind)),
				slog.String("error", err.Error()))...)
		}
	}
}

func (s *Scanner) observeFetch(kind string, start time.Time) {
	if s.prom != nil {
		s.prom.FetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
}

// record logs the cycle summary and feeds metrics and health.
func (s *Scanner) record(report *Report, cycleErr error) {
	counts := report.Counts()
	if s.prom != nil {
		s.prom.CyclesTotal.Inc()
		s.prom.CycleDuration.Observe(report.Duration().Seconds())
		s.prom.LastCycle.Set(float64(report.Finished.Unix()))
		for reason, n := range counts {
			s.prom.InstrumentsTotal.WithLabelValues(string(reason)).Add(float64(n))
		}
		s.prom.AlertsTotal.Add(float64(len(report.Alerts)))
	}
	if s.health != nil {
		s.health.RecordCycle(report.Finished, len(report.Outcomes), len(report.Alerts), cycleErr)
	}

	parts := make([]string, 0, len(counts))
	for _, reason := range sortedReasons(counts) {
		parts = append(parts, fmt.Sprintf("%s=%d", reason, counts[reason]))
	}
	log.Printf("[scanner] cycle %s done in %s: instruments=%d alerts=%d [%s]",
		report.ID, report.Duration().Round(time.Millisecond), len(report.Outcomes),
		len(report.Alerts), strings.Join(parts, " "))
}
