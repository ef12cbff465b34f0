package config

import (
	"errors"
	"fmt"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.Storage.validate(),
		c.Events.validate(),
		c.Telemetry.validate(),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (s *StorageConfig) validate() error {
	if s.Path == "" {
		return errors.New("storage.path must not be empty")
	}
	return nil
}

func (e *EventsConfig) validate() error {
	var errs []error

	if e.BufferSize < 1 {
		errs = append(errs, fmt.Errorf("events.buffer_size must be >= 1, got %d", e.BufferSize))
	}

	if e.Webhook.Enabled {
		if e.Webhook.URL == "" {
			errs = append(errs, errors.New("events.webhook.url must not be empty when the webhook sink is enabled"))
		}
		if e.Webhook.Timeout <= 0 {
			errs = append(errs, errors.New("events.webhook.timeout must be positive"))
		}
		if e.Webhook.Retry.MaxAttempts < 1 {
			errs = append(errs, fmt.Errorf("events.webhook.retry.max_attempts must be >= 1, got %d",
				e.Webhook.Retry.MaxAttempts))
		}
		if e.Webhook.Retry.Multiplier <= 0 {
			errs = append(errs, fmt.Errorf("events.webhook.retry.multiplier must be positive, got %f",
				e.Webhook.Retry.Multiplier))
		}
		if e.Webhook.CircuitBreaker.MaxFailures < 1 {
			errs = append(errs, fmt.Errorf("events.webhook.circuit_breaker.max_failures must be >= 1, got %d",
				e.Webhook.CircuitBreaker.MaxFailures))
		}
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}
