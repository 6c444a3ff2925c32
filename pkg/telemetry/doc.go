// Package telemetry instruments the renderer with Prometheus metrics and
// OpenTelemetry traces.
//
// Metrics and Tracer both implement render.Observer; combine them with
// render.MultiObserver. InstrumentHost wraps a HostOps so every host
// operation is counted.
//
//	reg := prometheus.NewRegistry()
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	r := render.New(telemetry.InstrumentHost(tree, m),
//	    render.WithObserver(render.MultiObserver(m, telemetry.NewTracer())),
//	)
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// passed with WithTracerProvider.
package telemetry
