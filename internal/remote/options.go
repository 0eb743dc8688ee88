package remote

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "photo-loader/internal/remote"

// Recorder receives load outcomes, e.g. for metrics.
type Recorder interface {
	LoadStarted(url string)
	LoadFinished(url string, status Status, took time.Duration)
	LoadDropped(url string)
}

type noopRecorder struct{}

func (noopRecorder) LoadStarted(string)                        {}
func (noopRecorder) LoadFinished(string, Status, time.Duration) {}
func (noopRecorder) LoadDropped(string)                        {}

type Option func(*options)

type options struct {
	publisher Executor
	tracer    trace.Tracer
	recorder  Recorder
}

func defaultOptions() options {
	return options{
		publisher: Immediate,
		tracer:    otel.Tracer(tracerName),
		recorder:  noopRecorder{},
	}
}

// WithPublisher sets the executor subscribers are called on. Defaults to
// Immediate.
func WithPublisher(e Executor) Option {
	return func(o *options) {
		if e != nil {
			o.publisher = e
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}
