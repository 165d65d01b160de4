package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Pinger is a dependency that can be probed (store/redis.Publisher).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus represents the scanner health.
type HealthStatus struct {
	mu sync.RWMutex

	LastCycleAt     time.Time `json:"last_cycle_at"`
	LastCycleOK     bool      `json:"last_cycle_ok"`
	LastCycleError  string    `json:"last_cycle_error"`
	LastInstruments int       `json:"last_instruments"`
	LastAlerts      int       `json:"last_alerts"`

	RedisConfigured bool    `json:"redis_configured"`
	RedisConnected  bool    `json:"redis_connected"`
	RedisLatencyMs  float64 `json:"redis_latency_ms"`

	LastCheckAt time.Time `json:"last_check_at"`
	StartedAt   time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

// RecordCycle stores the outcome of a finished scan cycle.
func (h *HealthStatus) RecordCycle(at time.Time, instruments, alerts int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastCycleAt = at
	h.LastInstruments = instruments
	h.LastAlerts = alerts
	h.LastCycleOK = err == nil
	h.LastCycleError = ""
	if err != nil {
		h.LastCycleError = err.Error()
	}
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, p Pinger) {
	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConfigured = true
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks until ctx is done.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, redis Pinger, interval time.Duration) {
	if redis == nil {
		return
	}
	probe := func() {
		probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		h.CheckRedis(probeCtx, redis)
		cancel()
	}
	probe()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probe()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
//
// healthy: the last cycle succeeded and Redis (if configured) is reachable.
// starting: no cycle has finished yet.
// degraded: the last cycle failed or Redis is down.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	switch {
	case h.LastCycleAt.IsZero():
		overallStatus = "starting"
	case !h.LastCycleOK || (h.RedisConfigured && !h.RedisConnected):
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	cycleAge := ""
	if !h.LastCycleAt.IsZero() {
		cycleAge = time.Since(h.LastCycleAt).Round(time.Second).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		LastCycleAt     string  `json:"last_cycle_at"`
		CycleAge        string  `json:"cycle_age"`
		LastCycleOK     bool    `json:"last_cycle_ok"`
		LastCycleError  string  `json:"last_cycle_error,omitempty"`
		LastInstruments int     `json:"last_instruments"`
		LastAlerts      int     `json:"last_alerts"`
		RedisConfigured bool    `json:"redis_configured"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		LastCycleAt:     h.LastCycleAt.Format(time.RFC3339),
		CycleAge:        cycleAge,
		LastCycleOK:     h.LastCycleOK,
		LastCycleError:  h.LastCycleError,
		LastInstruments: h.LastInstruments,
		LastAlerts:      h.LastAlerts,
		RedisConfigured: h.RedisConfigured,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}
