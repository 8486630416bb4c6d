// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	chatTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Chat turns by outcome (ok/invalid/error).",
		},
		[]string{"status"},
	)

	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per provider.",
		},
		[]string{"provider"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"provider", "success"},
	)

	postsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_total",
			Help: "Posting cycle outcomes (ok/rate_limited/error/skipped).",
		},
		[]string{"platform", "result"},
	)

	snapshotSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_saves_total",
			Help: "Snapshot save attempts by backend and status.",
		},
		[]string{"backend", "status"},
	)

	sessionsLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_live",
			Help: "Number of live chat sessions in the store.",
		},
	)

	sessionsEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_evicted_total",
			Help: "Sessions removed by capacity eviction.",
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			chatTurns, aiTokensIn, aiCallsLatencyMs,
			postsTotal, snapshotSaves,
			sessionsLive, sessionsEvicted,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Chat helpers --------

func IncChatTurn(status string) {
	chatTurns.WithLabelValues(norm(status)).Inc()
}

func AddTokensIn(provider string, n int) {
	aiTokensIn.WithLabelValues(norm(provider)).Add(float64(n))
}

func ObserveAICall(provider string, latencyMs int64, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

// -------- Posting helpers --------

func IncPost(platform, result string) {
	postsTotal.WithLabelValues(norm(platform), norm(result)).Inc()
}

// -------- Persistence / store helpers --------

func IncSnapshotSave(backend string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	snapshotSaves.WithLabelValues(norm(backend), status).Inc()
}

func SetLiveSessions(n int) {
	sessionsLive.Set(float64(n))
}

func AddEvicted(n int) {
	sessionsEvicted.Add(float64(n))
}
