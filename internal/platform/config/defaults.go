package config

const (
	defaultServerPort = 8080

	defaultEventBufferSize = 64

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"storage.path": "data/raciflow.db",

		"events.buffer_size":                             defaultEventBufferSize,
		"events.webhook.enabled":                         false,
		"events.webhook.url":                             "",
		"events.webhook.timeout":                         "10s",
		"events.webhook.retry.max_attempts":              defaultRetryMaxAttempts,
		"events.webhook.retry.initial_interval":          "100ms",
		"events.webhook.retry.max_interval":              "10s",
		"events.webhook.retry.multiplier":                defaultRetryMultiplier,
		"events.webhook.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"events.webhook.circuit_breaker.timeout":         "30s",
		"events.webhook.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"events.webhook.rate_limit.requests_per_second":  0,
		"events.webhook.rate_limit.burst_size":           1,

		"telemetry.enabled":  false,
		"telemetry.exporter": "stdout",
		"telemetry.endpoint": "",
	}
}
