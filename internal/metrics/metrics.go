// Package metrics exposes Prometheus counters for the edit session.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultBusy  = "busy"
)

var (
	// toolCommits counts confirmed tool stages by tool and result.
	toolCommits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoedit_tool_commits_total",
		Help: "Tool confirmations by tool and result",
	}, []string{"tool", "result"})

	// commitDuration tracks render plus export latency.
	commitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "photoedit_tool_commit_duration_seconds",
		Help:    "Time to render and export a confirmed tool stage",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"tool"})

	// historyMoves counts undo and redo requests.
	historyMoves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoedit_history_moves_total",
		Help: "Undo and redo requests by direction",
	}, []string{"direction"})

	// saves counts save attempts by result.
	saves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoedit_saves_total",
		Help: "Project saves by result",
	}, []string{"result"})

	// errorsByKind counts session errors by kind.
	errorsByKind = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoedit_errors_total",
		Help: "Session errors by kind",
	}, []string{"kind"})
)

// ToolCommitted records one Confirm.
func ToolCommitted(tool, result string, d time.Duration) {
	toolCommits.WithLabelValues(tool, result).Inc()
	commitDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// HistoryMoved records an undo or redo.
func HistoryMoved(direction string) {
	historyMoves.WithLabelValues(direction).Inc()
}

// SaveFinished records one save attempt.
func SaveFinished(result string) {
	saves.WithLabelValues(result).Inc()
}

// ErrorSeen records an error of the given kind.
func ErrorSeen(kind string) {
	errorsByKind.WithLabelValues(kind).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
