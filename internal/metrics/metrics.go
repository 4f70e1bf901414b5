package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghostflap_sessions_started_total",
		Help: "Total number of sessions started, labelled by mode.",
	}, []string{"mode"})

	SessionsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghostflap_sessions_ended_total",
		Help: "Total number of sessions ended, labelled by mode.",
	}, []string{"mode"})

	ObstaclesSpawned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghostflap_obstacles_spawned_total",
		Help: "Total number of obstacles spawned, labelled by gap source (live or replay).",
	}, []string{"source"})

	ReplayCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghostflap_replay_callbacks_total",
		Help: "Total number of replayed actor events fired, labelled by event kind.",
	}, []string{"kind"})

	ReplaysRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghostflap_replays_rejected_total",
		Help: "Total number of replays refused before scheduling, labelled by reason.",
	}, []string{"reason"})

	FinalScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ghostflap_final_score",
		Help:    "Distribution of final session scores.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 250},
	})

	ActiveSSHSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ghostflap_ssh_sessions_active",
		Help: "Current number of connected SSH players.",
	})
)

// Source labels for ObstaclesSpawned.
const (
	SourceLive   = "live"
	SourceReplay = "replay"
)

// Reason labels for ReplaysRejected.
const (
	ReasonMalformed = "malformed"
	ReasonViewport  = "viewport"
	ReasonRules     = "rules"
)
