package photos

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"sync"
	"testing"

	"photo-loader/internal/networker"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBase = "https://picsum.test"

var testLogger = zap.NewNop().Sugar()

const listBody = `[
	{"id":"0","author":"Alejandro Escamilla","width":5000,"height":3333,"url":"https://unsplash.com/photos/yC-Yzbqy7PY","download_url":"https://picsum.test/id/0/5000/3333"},
	{"id":"1","author":"Paul Jarvis","width":5000,"height":3333,"url":"https://unsplash.com/photos/LNRyGwIJr5c","download_url":"https://picsum.test/id/1/5000/3333"}
]`

// routeNetworker serves fixed bodies by URL and 404s everything else.
type routeNetworker struct {
	mu     sync.Mutex
	routes map[string][]byte
	urls   []string
}

func (n *routeNetworker) Fetch(_ context.Context, url string) (*networker.FetchResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.urls = append(n.urls, url)
	body, ok := n.routes[url]
	if !ok {
		return &networker.FetchResult{Status: http.StatusNotFound}, nil
	}

	return &networker.FetchResult{Status: http.StatusOK, Body: body}, nil
}

func (n *routeNetworker) fetched() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.urls...)
}

func pngBody(t *testing.T, size int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestNetworker(t *testing.T) *routeNetworker {
	return &routeNetworker{routes: map[string][]byte{
		testBase + "/v2/list":       []byte(listBody),
		testBase + "/id/1/40/40":     pngBody(t, 40),
		testBase + "/id/1/5000/3333": pngBody(t, 8),
	}}
}
