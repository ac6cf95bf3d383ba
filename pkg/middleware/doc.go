// Package middleware provides the HTTP and live-event instrumentation for
// the contact form server.
//
// This package includes:
//   - Prometheus metrics middleware and recording functions
//   - OpenTelemetry tracing middleware and live event spans
//
// # Prometheus Metrics
//
// Metrics are registered on an injectable registry:
//
//	reg := prometheus.NewRegistry()
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Metrics collected:
//   - contactform_requests_total{route,status}
//   - contactform_request_duration_seconds{route}
//   - contactform_events_total{event}
//   - contactform_validation_failures_total{field}
//   - contactform_submissions_total{result}
//   - contactform_live_connections
//   - contactform_reconnects_total
//   - contactform_websocket_errors_total{type}
//
// # OpenTelemetry Tracing
//
// The tracing middleware starts a server span for every HTTP request:
//
//	r.Use(middleware.Tracing(middleware.WithTracerName("contactform")))
//
// Live events get their own span:
//
//	ctx, span := tracer.StartEvent(ctx, "input", "h3")
//	err := dispatch(ctx)
//	middleware.EndSpan(span, err)
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// passed with WithTracerProvider. Configure it in main() before starting
// the server:
//
//	otel.SetTracerProvider(tp)
package middleware
