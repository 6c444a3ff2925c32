package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactor/pkg/render"
)

// Default tracer name.
const defaultTracerName = "reactor"

// TracerConfig configures the tracing observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "reactor").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// Attributes are added to every span.
	Attributes []attribute.KeyValue
}

// TracerOption configures the tracing observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

// WithAttributes adds attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) TracerOption {
	return func(c *TracerConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Tracer is a render.Observer that opens one span per component render.
// A child mounted during its parent's render gets a child span.
type Tracer struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue

	mu    sync.Mutex
	base  context.Context
	stack []context.Context
}

var _ render.Observer = (*Tracer)(nil)

// NewTracer creates a tracing observer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.Provider != nil {
		tracer = config.Provider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracer{
		tracer: tracer,
		attrs:  config.Attributes,
		base:   context.Background(),
	}
}

// WithContext sets the context that root spans are started from, for
// example the span of the request or event that caused a render.
func (t *Tracer) WithContext(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.base = ctx
}

// Context returns the context of the innermost open render span.
func (t *Tracer) Context() context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current()
}

func (t *Tracer) current() context.Context {
	if n := len(t.stack); n > 0 {
		return t.stack[n-1]
	}
	return t.base
}

// BeginRender implements render.Observer.
func (t *Tracer) BeginRender(component string, phase render.Phase) func() {
	attrs := append([]attribute.KeyValue{
		attribute.String("reactor.component", component),
		attribute.String("reactor.phase", string(phase)),
	}, t.attrs...)

	t.mu.Lock()
	ctx, span := t.tracer.Start(t.current(), "reactor."+string(phase),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	t.stack = append(t.stack, ctx)
	depth := len(t.stack)
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		if len(t.stack) >= depth {
			t.stack = t.stack[:depth-1]
		}
		t.mu.Unlock()
		span.End()
	}
}

// Unmounted implements render.Observer. The unmount is recorded as an
// event on the innermost open span.
func (t *Tracer) Unmounted(component string) {
	span := trace.SpanFromContext(t.Context())
	span.AddEvent("reactor.unmount", trace.WithAttributes(
		attribute.String("reactor.component", component),
	))
}
