package remote

import (
	"context"
	"sync"
	"testing"
	"time"

	"photo-loader/internal/networker"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testURL = "https://example.test/a.json"

var testLogger = zap.NewNop().Sugar()

type fetchFunc func(ctx context.Context, url string) (*networker.FetchResult, error)

type fakeNetworker struct {
	mu    sync.Mutex
	urls  []string
	fetch fetchFunc
}

func newFakeNetworker(fetch fetchFunc) *fakeNetworker {
	return &fakeNetworker{fetch: fetch}
}

func (f *fakeNetworker) Fetch(ctx context.Context, url string) (*networker.FetchResult, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	fetch := f.fetch
	f.mu.Unlock()

	return fetch(ctx, url)
}

func (f *fakeNetworker) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.urls)
}

func respondWith(status int, body string) fetchFunc {
	return func(context.Context, string) (*networker.FetchResult, error) {
		return &networker.FetchResult{Status: status, Body: []byte(body)}, nil
	}
}

func failWith(err error) fetchFunc {
	return func(context.Context, string) (*networker.FetchResult, error) {
		return nil, err
	}
}

// gate blocks every fetch until release is closed, ignoring ctx, and reports
// each fetch that has started on started.
func gate(started chan<- struct{}, release <-chan struct{}, next fetchFunc) fetchFunc {
	return func(ctx context.Context, url string) (*networker.FetchResult, error) {
		started <- struct{}{}
		<-release
		return next(ctx, url)
	}
}

type fakeRecorder struct {
	finished chan Status
	dropped  chan string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		finished: make(chan Status, 16),
		dropped:  make(chan string, 16),
	}
}

func (r *fakeRecorder) LoadStarted(string) {}

func (r *fakeRecorder) LoadFinished(_ string, status Status, _ time.Duration) {
	r.finished <- status
}

func (r *fakeRecorder) LoadDropped(url string) {
	r.dropped <- url
}

// statusLog collects the statuses a subscriber has seen.
type statusLog struct {
	mu       sync.Mutex
	statuses []Status
}

func subscribeLog[T any](r *Resource[T]) *statusLog {
	l := &statusLog{}
	r.Subscribe(func(s FetchState[T]) {
		l.mu.Lock()
		l.statuses = append(l.statuses, s.Status)
		l.mu.Unlock()
	})
	return l
}

func (l *statusLog) get() []Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Status, len(l.statuses))
	copy(out, l.statuses)
	return out
}

func waitForStatus[T any](t *testing.T, r *Resource[T], want Status) FetchState[T] {
	t.Helper()

	require.Eventually(t, func() bool {
		return r.State().Status == want
	}, time.Second, time.Millisecond, "resource never reached %s", want)

	return r.State()
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting")
	}

	var zero T
	return zero
}

// queueExecutor holds publishes until run is called.
type queueExecutor struct {
	mu     sync.Mutex
	queued []func()
}

func (q *queueExecutor) Execute(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.queued = append(q.queued, fn)
}

func (q *queueExecutor) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.queued)
}

func (q *queueExecutor) run() {
	q.mu.Lock()
	fns := q.queued
	q.queued = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
