package photos

import (
	"image"
	"sync"

	"photo-loader/internal/networker"
	"photo-loader/internal/remote"

	"go.uber.org/zap"
)

type Kind string

const (
	AuthorsKind   Kind = "authors"
	ThumbnailKind Kind = "thumbnail"
	FullSizeKind  Kind = "photo"
)

// Change is a state transition of one of the catalog's resources.
type Change struct {
	Kind    Kind
	PhotoID string
	URL     string
	Status  remote.Status
	Err     error
	Photos  []Photo
}

// Catalog owns the author list and the image resources of the photos in it.
// Image resources are created on first use and are offloaded and forgotten
// when the author list is offloaded.
type Catalog struct {
	logger        *zap.SugaredLogger
	networker     networker.Networker
	baseURL       string
	thumbnailSize int
	opts          []remote.Option

	authors *remote.Resource[[]Photo]

	mu         sync.Mutex
	thumbnails map[string]*remote.Resource[image.Image]
	fullSize   map[string]*remote.Resource[image.Image]

	observersMu sync.Mutex
	observers   []func(Change)
}

func NewCatalog(logger *zap.SugaredLogger, nw networker.Networker, baseURL string, thumbnailSize int, opts ...remote.Option) *Catalog {
	c := &Catalog{
		logger:        logger,
		networker:     nw,
		baseURL:       baseURL,
		thumbnailSize: thumbnailSize,
		opts:          opts,
		thumbnails:    make(map[string]*remote.Resource[image.Image]),
		fullSize:      make(map[string]*remote.Resource[image.Image]),
	}

	c.authors = remote.New(logger, nw, ListURL(baseURL), remote.JSONTransform[[]Photo](), opts...)
	c.authors.Subscribe(func(s remote.FetchState[[]Photo]) {
		c.notify(Change{
			Kind:   AuthorsKind,
			URL:    c.authors.URL(),
			Status: s.Status,
			Err:    s.Err,
			Photos: s.Value,
		})

		// a reload may already have reached Success and built new images
		if s.Status == remote.NotStarted && c.authors.State().Status != remote.Success {
			c.releaseImages()
		}
	})

	return c
}

// Subscribe registers fn for changes of every resource in the catalog,
// including ones created later.
func (c *Catalog) Subscribe(fn func(Change)) {
	c.observersMu.Lock()
	defer c.observersMu.Unlock()

	c.observers = append(c.observers, fn)
}

func (c *Catalog) Authors() *remote.Resource[[]Photo] {
	return c.authors
}

// Photo looks id up in the loaded author list.
func (c *Catalog) Photo(id string) (Photo, error) {
	list, ok := c.authors.State().Get()
	if !ok {
		return Photo{}, ErrAuthorsNotLoaded
	}

	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}

	return Photo{}, ErrUnknownPhoto
}

func (c *Catalog) Thumbnail(id string) (*remote.Resource[image.Image], error) {
	photo, err := c.Photo(id)
	if err != nil {
		return nil, err
	}

	thumbnailURL, err := photo.ThumbnailURL(c.baseURL, c.thumbnailSize)
	if err != nil {
		return nil, err
	}

	return c.imageResource(c.thumbnails, ThumbnailKind, id, thumbnailURL), nil
}

func (c *Catalog) FullSize(id string) (*remote.Resource[image.Image], error) {
	photo, err := c.Photo(id)
	if err != nil {
		return nil, err
	}

	return c.imageResource(c.fullSize, FullSizeKind, id, photo.DownloadURL), nil
}

// OffloadAuthors offloads the author list together with every image built
// from it.
func (c *Catalog) OffloadAuthors() {
	c.releaseImages()
	c.authors.Offload()
}

// OffloadAll returns every resource to NotStarted.
func (c *Catalog) OffloadAll() {
	c.OffloadAuthors()
}

func (c *Catalog) releaseImages() {
	c.mu.Lock()
	images := make([]*remote.Resource[image.Image], 0, len(c.thumbnails)+len(c.fullSize))
	for _, r := range c.thumbnails {
		images = append(images, r)
	}
	for _, r := range c.fullSize {
		images = append(images, r)
	}
	c.thumbnails = make(map[string]*remote.Resource[image.Image])
	c.fullSize = make(map[string]*remote.Resource[image.Image])
	c.mu.Unlock()

	for _, r := range images {
		r.Offload()
	}
}

func (c *Catalog) imageResource(set map[string]*remote.Resource[image.Image], kind Kind, id, url string) *remote.Resource[image.Image] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := set[id]; ok {
		return r
	}

	r := remote.New(c.logger, c.networker, url, remote.ImageTransform(), c.opts...)
	r.Subscribe(func(s remote.FetchState[image.Image]) {
		c.notify(Change{
			Kind:    kind,
			PhotoID: id,
			URL:     url,
			Status:  s.Status,
			Err:     s.Err,
		})
	})

	set[id] = r
	return r
}

func (c *Catalog) notify(change Change) {
	c.observersMu.Lock()
	observers := make([]func(Change), len(c.observers))
	copy(observers, c.observers)
	c.observersMu.Unlock()

	for _, fn := range observers {
		fn(change)
	}
}
