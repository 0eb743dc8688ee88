package photos

import (
	"context"
	"sync"
	"testing"
	"time"

	"photo-loader/internal/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeLog struct {
	mu      sync.Mutex
	changes []Change
}

func (l *changeLog) add(c Change) {
	l.mu.Lock()
	l.changes = append(l.changes, c)
	l.mu.Unlock()
}

func (l *changeLog) get() []Change {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]Change(nil), l.changes...)
}

func loadAuthors(t *testing.T, c *Catalog) []Photo {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	list, err := c.Authors().Await(ctx)
	require.NoError(t, err)
	return list
}

func TestCatalog_Authors(t *testing.T) {
	c := NewCatalog(testLogger, newTestNetworker(t), testBase, 40)

	list := loadAuthors(t, c)
	require.Len(t, list, 2)
	assert.Equal(t, "Paul Jarvis", list[1].Author)
	assert.Equal(t, testBase+"/id/1/5000/3333", list[1].DownloadURL)
}

func TestCatalog_LookupBeforeLoad(t *testing.T) {
	c := NewCatalog(testLogger, newTestNetworker(t), testBase, 40)

	_, err := c.Thumbnail("1")
	assert.ErrorIs(t, err, ErrAuthorsNotLoaded)

	loadAuthors(t, c)

	_, err = c.Thumbnail("42")
	assert.ErrorIs(t, err, ErrUnknownPhoto)
}

func TestCatalog_Thumbnail(t *testing.T) {
	nw := newTestNetworker(t)
	c := NewCatalog(testLogger, nw, testBase, 40)
	loadAuthors(t, c)

	thumb, err := c.Thumbnail("1")
	require.NoError(t, err)
	assert.Equal(t, testBase+"/id/1/40/40", thumb.URL())

	again, err := c.Thumbnail("1")
	require.NoError(t, err)
	assert.Same(t, thumb, again)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	img, err := thumb.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
}

func TestCatalog_FullSize(t *testing.T) {
	c := NewCatalog(testLogger, newTestNetworker(t), testBase, 40)
	loadAuthors(t, c)

	full, err := c.FullSize("1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	img, err := full.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestCatalog_MissingImageFails(t *testing.T) {
	c := NewCatalog(testLogger, newTestNetworker(t), testBase, 40)
	loadAuthors(t, c)

	thumb, err := c.Thumbnail("0")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = thumb.Await(ctx)

	var transportErr *remote.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 404, transportErr.Status)
}

func TestCatalog_Subscribe(t *testing.T) {
	c := NewCatalog(testLogger, newTestNetworker(t), testBase, 40)

	seen := &changeLog{}
	c.Subscribe(seen.add)

	loadAuthors(t, c)

	thumb, err := c.Thumbnail("1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = thumb.Await(ctx)
	require.NoError(t, err)

	// Await can return before the last publish reaches every subscriber.
	require.Eventually(t, func() bool {
		return len(seen.get()) == 4
	}, time.Second, time.Millisecond)

	changes := seen.get()

	assert.Equal(t, AuthorsKind, changes[0].Kind)
	assert.Equal(t, remote.Loading, changes[0].Status)
	assert.Equal(t, remote.Success, changes[1].Status)
	assert.Len(t, changes[1].Photos, 2)

	assert.Equal(t, ThumbnailKind, changes[2].Kind)
	assert.Equal(t, "1", changes[2].PhotoID)
	assert.Equal(t, remote.Loading, changes[2].Status)
	assert.Equal(t, remote.Success, changes[3].Status)
}

func TestCatalog_OffloadAll(t *testing.T) {
	nw := newTestNetworker(t)
	c := NewCatalog(testLogger, nw, testBase, 40)
	loadAuthors(t, c)

	thumb, err := c.Thumbnail("1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = thumb.Await(ctx)
	require.NoError(t, err)

	c.OffloadAll()

	assert.Equal(t, remote.NotStarted, thumb.State().Status)
	assert.Equal(t, remote.NotStarted, c.Authors().State().Status)

	_, err = c.Thumbnail("1")
	assert.ErrorIs(t, err, ErrAuthorsNotLoaded)

	loadAuthors(t, c)
	assert.Len(t, nw.fetched(), 3)
}

func TestCatalog_OffloadAuthorsReleasesImages(t *testing.T) {
	nw := newTestNetworker(t)
	c := NewCatalog(testLogger, nw, testBase, 40)
	loadAuthors(t, c)

	thumb, err := c.Thumbnail("1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = thumb.Await(ctx)
	require.NoError(t, err)

	c.OffloadAuthors()

	state := thumb.State()
	assert.Equal(t, remote.NotStarted, state.Status)
	assert.Nil(t, state.Value)

	loadAuthors(t, c)

	again, err := c.Thumbnail("1")
	require.NoError(t, err)
	assert.NotSame(t, thumb, again)
	assert.Equal(t, remote.NotStarted, again.State().Status)
}

func TestCatalog_AuthorsOffloadedDirectly(t *testing.T) {
	c := NewCatalog(testLogger, newTestNetworker(t), testBase, 40)
	loadAuthors(t, c)

	full, err := c.FullSize("1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = full.Await(ctx)
	require.NoError(t, err)

	c.Authors().Offload()

	// the image is freed by the author list's NotStarted publish
	assert.Equal(t, remote.NotStarted, full.State().Status)

	loadAuthors(t, c)

	again, err := c.FullSize("1")
	require.NoError(t, err)
	assert.NotSame(t, full, again)
}
