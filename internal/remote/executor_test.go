package remote

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialExecutor_Order(t *testing.T) {
	e := NewSerialExecutor(testLogger, 4)
	go e.Start()

	var (
		mu  sync.Mutex
		got []int
	)
	done := make(chan struct{})

	for i := range 100 {
		e.Execute(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()

			if i == 99 {
				close(done)
			}
		})
	}

	waitFor(t, done)
	require.NoError(t, e.Stop(context.Background()))

	want := make([]int, 100)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestSerialExecutor_RecoversPanics(t *testing.T) {
	e := NewSerialExecutor(testLogger, 0)
	go e.Start()
	defer e.Stop(context.Background())

	ran := make(chan struct{})
	e.Execute(func() { panic("subscriber bug") })
	e.Execute(func() { close(ran) })

	waitFor(t, ran)
}

func TestSerialExecutor_Stop(t *testing.T) {
	t.Run("start after stop drains queued work", func(t *testing.T) {
		e := NewSerialExecutor(testLogger, 8)

		ran := 0
		for range 3 {
			e.Execute(func() { ran++ })
		}

		require.NoError(t, e.Stop(context.Background()))
		e.Start()

		assert.Equal(t, 3, ran)
	})

	t.Run("drops work after stop", func(t *testing.T) {
		e := NewSerialExecutor(testLogger, 8)
		go e.Start()
		require.NoError(t, e.Stop(context.Background()))

		ran := false
		e.Execute(func() { ran = true })

		assert.False(t, ran)
	})

	t.Run("never started", func(t *testing.T) {
		e := NewSerialExecutor(testLogger, 8)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		assert.NoError(t, e.Stop(ctx))
	})
}

func TestSerialExecutor_AsPublisher(t *testing.T) {
	e := NewSerialExecutor(testLogger, 0)
	go e.Start()
	defer e.Stop(context.Background())

	r := New(testLogger, newFakeNetworker(respondWith(http.StatusOK, `{"x":1}`)), testURL, JSONTransform[point](), WithPublisher(e))

	seen := make(chan Status, 4)
	r.Subscribe(func(s FetchState[point]) { seen <- s.Status })

	r.Load(context.Background())

	assert.Equal(t, Loading, waitFor(t, seen))
	assert.Equal(t, Success, waitFor(t, seen))
}
