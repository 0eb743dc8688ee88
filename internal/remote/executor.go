package remote

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const DefaultExecutorBuffer = 256

// Executor runs the functions that deliver state changes to subscribers.
type Executor interface {
	Execute(fn func())
}

type ExecutorFunc func(fn func())

func (f ExecutorFunc) Execute(fn func()) {
	f(fn)
}

// Immediate delivers on the calling goroutine.
var Immediate Executor = ExecutorFunc(func(fn func()) { fn() })

// SerialExecutor runs every submitted function on one goroutine, in
// submission order. Start must be running for Execute to make progress.
type SerialExecutor struct {
	logger *zap.SugaredLogger

	queue   chan func()
	done    chan struct{}
	stopped chan struct{}

	started  atomic.Bool
	stopOnce sync.Once
}

func NewSerialExecutor(logger *zap.SugaredLogger, buffer int) *SerialExecutor {
	if buffer <= 0 {
		buffer = DefaultExecutorBuffer
	}

	return &SerialExecutor{
		logger:  logger,
		queue:   make(chan func(), buffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start blocks, running queued functions until Stop is called.
func (e *SerialExecutor) Start() {
	e.started.Store(true)
	defer close(e.stopped)

	for {
		select {
		case fn := <-e.queue:
			e.run(fn)
		case <-e.done:
			e.drain()
			return
		}
	}
}

// Execute queues fn. After Stop it is dropped.
func (e *SerialExecutor) Execute(fn func()) {
	select {
	case <-e.done:
		e.logger.Debugw("executor stopped, dropping task")
		return
	default:
	}

	select {
	case e.queue <- fn:
	case <-e.done:
		e.logger.Debugw("executor stopped, dropping task")
	}
}

func (e *SerialExecutor) drain() {
	for {
		select {
		case fn := <-e.queue:
			e.run(fn)
		default:
			return
		}
	}
}

func (e *SerialExecutor) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorw("recovered from panic in subscriber", "err", r)
		}
	}()

	fn()
}

// Stop runs what is already queued and waits for Start to return.
func (e *SerialExecutor) Stop(ctx context.Context) error {
	e.stopOnce.Do(func() {
		close(e.done)
	})

	if !e.started.Load() {
		return nil
	}

	select {
	case <-e.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
