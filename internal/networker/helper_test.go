package networker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

var testLogger = zap.NewNop().Sugar()

type countingNetworker struct {
	mu    sync.Mutex
	urls  []string
	reply func(url string) (*FetchResult, error)
}

func (n *countingNetworker) Fetch(_ context.Context, url string) (*FetchResult, error) {
	n.mu.Lock()
	n.urls = append(n.urls, url)
	n.mu.Unlock()

	return n.reply(url)
}

func (n *countingNetworker) fetched() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]string, len(n.urls))
	copy(out, n.urls)
	return out
}
