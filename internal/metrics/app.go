package metrics

import (
	"time"

	"github.com/lughati/lughati/internal/observability"
)

// Application-level metrics following Prometheus conventions
const (
	GateDecisionsTotal = "app_gate_decisions_total"
	GenerationsTotal   = "app_generations_total"
	GenerationDuration = "app_generation_duration_ms"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
)

// RecordGateDecision records one admission decision. reason is empty for
// allowed requests.
func RecordGateDecision(allowed bool, reason string, byoKey bool) {
	status := "allowed"
	if !allowed {
		status = "denied"
	}
	tier := "free"
	if byoKey {
		tier = "byo_key"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			GateDecisionsTotal,
			1,
			map[string]string{
				"status": status,
				"reason": reason,
				"tier":   tier,
			},
		)
	}
}

// RecordGeneration records a downstream generation attempt.
func RecordGeneration(mode string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			GenerationsTotal,
			1,
			map[string]string{
				"mode":   mode,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			GenerationDuration,
			duration,
			map[string]string{
				"mode": mode,
			},
		)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
