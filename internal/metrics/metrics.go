// Package metrics holds the process-wide prometheus collectors. The tick
// thread and the API layer record into them; the debug server exposes them
// on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics with bounded cardinality (no per-player labels to prevent DoS)
var (
	// Simulation metrics
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent computing one tick",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.02, 0.03, 0.05, 0.1},
	})

	tickAverage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_tick_average_ms",
		Help: "Rolling average compute time per tick over the sample window",
	})

	serverLoad = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_server_load_ratio",
		Help: "Rolling average tick compute time divided by the tick period",
	})

	playersAlive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_players_alive",
		Help: "Players currently alive",
	})

	playersConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_players_connected",
		Help: "Players currently connected and joined",
	})

	bulletsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_bullets_live",
		Help: "Bullets currently in flight",
	})

	gasStage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_gas_stage",
		Help: "Current hazard zone stage index",
	})

	inputsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_inputs_dropped_total",
		Help: "Client commands dropped because the input queue was full",
	})

	sendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_send_failures_total",
		Help: "Packet sends that failed and disconnected the client",
	})

	// Event log metrics
	eventLogTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	})

	eventLogDropped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_dropped",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	// DoS detection metrics - use ONLY bounded label values
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or capacity check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "full", "closed"

	// HTTP metrics with bounded labels
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is path pattern, not full URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages",
	}, []string{"direction"}) // "in", "out"
)

// RecordTick records the compute time of one tick.
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// RecordTickAverage records the rolling average and the resulting load.
func RecordTickAverage(avgMs, load float64) {
	tickAverage.Set(avgMs)
	serverLoad.Set(load)
}

// UpdateMatch updates the per-tick match gauges.
func UpdateMatch(alive, connected, bullets, stage int) {
	playersAlive.Set(float64(alive))
	playersConnected.Set(float64(connected))
	bulletsLive.Set(float64(bullets))
	gasStage.Set(float64(stage))
}

// RecordInputDropped counts a command dropped by a full input queue.
func RecordInputDropped() {
	inputsDropped.Inc()
}

// RecordSendFailure counts a failed packet send.
func RecordSendFailure() {
	sendFailures.Inc()
}

// UpdateEventLogStats mirrors the event log counters.
func UpdateEventLogStats(total, dropped uint64) {
	eventLogTotal.Set(float64(total))
	eventLogDropped.Set(float64(dropped))
}

// RecordConnectionRejected increments the rejection counter
// reason must be one of: "rate_limit", "origin", "full", "closed"
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments the WebSocket message counter for
// direction "in" or "out".
func IncrementWSMessages(direction string) {
	wsMessagesTotal.WithLabelValues(direction).Inc()
}
