package remote

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"photo-loader/internal/networker"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type subscriber[T any] struct {
	id uint64
	fn func(seq uint64, state FetchState[T])
}

// Resource is a value fetched from URL on demand.
type Resource[T any] struct {
	logger    *zap.SugaredLogger
	networker networker.Networker
	url       string
	transform Transform[T]

	publisher Executor
	tracer    trace.Tracer
	recorder  Recorder

	mu         sync.Mutex
	state      FetchState[T]
	generation uint64
	cancel     context.CancelFunc
	seq        uint64

	subsMu    sync.Mutex
	subs      []subscriber[T]
	nextSubID uint64
	delivered uint64
}

func New[T any](logger *zap.SugaredLogger, nw networker.Networker, url string, transform Transform[T], opts ...Option) *Resource[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Resource[T]{
		logger:    logger,
		networker: nw,
		url:       url,
		transform: transform,
		publisher: o.publisher,
		tracer:    o.tracer,
		recorder:  o.recorder,
	}
}

func (r *Resource[T]) URL() string {
	return r.url
}

func (r *Resource[T]) State() FetchState[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// Load starts a fetch unless one is in flight or a value is already held.
// Cancelling ctx aborts the request and fails the load.
func (r *Resource[T]) Load(ctx context.Context) {
	r.load(ctx, nil)
}

// load is Load that also reports, through mark and under the state lock, the
// first sequence number that belongs to the load now running. Publishes below
// it predate the call.
func (r *Resource[T]) load(ctx context.Context, mark func(from uint64)) {
	r.mu.Lock()
	if r.state.Status == Loading || r.state.Status == Success {
		if mark != nil {
			mark(r.seq + 1)
		}
		r.mu.Unlock()
		return
	}

	r.generation++
	gen := r.generation

	fetchCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.state = FetchState[T]{Status: Loading}
	seq := r.nextSeqLocked()
	if mark != nil {
		mark(seq)
	}
	r.mu.Unlock()

	r.logger.Infow("load", "url", r.url)
	r.recorder.LoadStarted(r.url)
	r.publish(seq, FetchState[T]{Status: Loading})

	go r.fetch(fetchCtx, cancel, gen)
}

// Offload drops the held value or in-flight request and returns to
// NotStarted.
func (r *Resource[T]) Offload() {
	r.mu.Lock()
	r.generation++

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	prev := r.state.Status
	r.state = FetchState[T]{}

	if prev == NotStarted {
		r.mu.Unlock()
		return
	}

	seq := r.nextSeqLocked()
	r.mu.Unlock()

	r.logger.Infow("offload", "url", r.url, "from", prev)
	r.publish(seq, FetchState[T]{})
}

// Subscribe registers fn for every published state. Changes published before
// Subscribe are not replayed; read State for the current one.
func (r *Resource[T]) Subscribe(fn func(FetchState[T])) (unsubscribe func()) {
	return r.subscribe(func(_ uint64, s FetchState[T]) { fn(s) })
}

func (r *Resource[T]) subscribe(fn func(seq uint64, state FetchState[T])) (unsubscribe func()) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()

	r.nextSubID++
	id := r.nextSubID
	r.subs = append(r.subs, subscriber[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { r.unsubscribe(id) })
	}
}

// Await loads and blocks until the load succeeds or fails. It returns
// ErrOffloaded when the resource is offloaded first. It must not be called
// from the publisher's goroutine.
func (r *Resource[T]) Await(ctx context.Context) (T, error) {
	var from atomic.Uint64
	from.Store(math.MaxUint64)

	done := make(chan FetchState[T], 1)
	unsubscribe := r.subscribe(func(seq uint64, s FetchState[T]) {
		if seq < from.Load() || s.Status == Loading {
			return
		}

		select {
		case done <- s:
		default:
		}
	})
	defer unsubscribe()

	r.load(ctx, from.Store)

	if s := r.State(); s.Done() {
		return s.Value, s.Err
	}

	var zero T
	select {
	case s := <-done:
		if s.Status == NotStarted {
			return zero, ErrOffloaded
		}
		return s.Value, s.Err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (r *Resource[T]) unsubscribe(id uint64) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()

	for i, sub := range r.subs {
		if sub.id == id {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return
		}
	}
}

func (r *Resource[T]) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "remote.Load", trace.WithAttributes(attribute.String("url.full", r.url)))
	defer span.End()

	started := time.Now()
	next := r.resolve(ctx)

	if next.Err != nil {
		span.RecordError(next.Err)
		span.SetStatus(codes.Error, next.Err.Error())
	}

	r.mu.Lock()
	if r.generation != gen {
		r.mu.Unlock()

		span.SetAttributes(attribute.Bool("remote.dropped", true))
		r.logger.Debugw("dropping stale completion", "url", r.url, "status", next.Status)
		r.recorder.LoadDropped(r.url)
		return
	}

	r.state = next
	r.cancel = nil
	seq := r.nextSeqLocked()
	r.mu.Unlock()

	if next.Err != nil {
		r.logger.Warnw("load failed", "url", r.url, "err", next.Err)
	}

	r.recorder.LoadFinished(r.url, next.Status, time.Since(started))
	r.publish(seq, next)
}

func (r *Resource[T]) resolve(ctx context.Context) (state FetchState[T]) {
	res, err := r.networker.Fetch(ctx, r.url)
	if err != nil {
		return failed[T](&TransportError{URL: r.url, Err: err})
	}

	if res.Status >= http.StatusBadRequest {
		return failed[T](&TransportError{URL: r.url, Status: res.Status, Err: ErrBadStatus})
	}

	defer func() {
		if p := recover(); p != nil {
			state = failed[T](&TransformError{URL: r.url, Err: fmt.Errorf("%w: %v", ErrTransformPanic, p)})
		}
	}()

	value, err := r.transform(res.Body)
	if err != nil {
		return failed[T](&TransformError{URL: r.url, Err: err})
	}

	return succeeded(value)
}

func (r *Resource[T]) nextSeqLocked() uint64 {
	r.seq++
	return r.seq
}

func (r *Resource[T]) publish(seq uint64, state FetchState[T]) {
	r.publisher.Execute(func() {
		r.deliver(seq, state)
	})
}

// deliver drops anything older than what subscribers have already seen, so a
// late publish never overwrites a newer state.
func (r *Resource[T]) deliver(seq uint64, state FetchState[T]) {
	r.subsMu.Lock()
	if seq <= r.delivered {
		r.subsMu.Unlock()
		return
	}

	r.delivered = seq
	subs := make([]subscriber[T], len(r.subs))
	copy(subs, r.subs)
	r.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(seq, state)
	}
}
