package live

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/reactor/pkg/render"
	"github.com/vango-dev/reactor/pkg/telemetry"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records renders, host ops and events in m and serves
// gatherer on /metrics. A nil gatherer leaves /metrics unrouted.
func WithMetrics(m *telemetry.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithObserver adds a lifecycle observer, for example a telemetry.Tracer.
func WithObserver(o render.Observer) Option {
	return func(s *Server) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithAllowedOrigins restricts WebSocket upgrades to the given origins.
// Without it every origin is accepted.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = append(s.origins, origins...)
	}
}
