package store

import (
	"context"

	"photo-loader/internal/photos"
)

// PhotoRepo persists the author list once it has been loaded.
type PhotoRepo interface {
	SavePhotos(ctx context.Context, list []photos.Photo) error
	EnsureConnectivity(ctx context.Context) error
	Stop(ctx context.Context) error
}

func photoParams(list []photos.Photo) []any {
	out := make([]any, 0, len(list))
	for _, p := range list {
		out = append(out, map[string]any{
			"id":          p.ID,
			"author":      p.Author,
			"width":       int64(p.Width),
			"height":      int64(p.Height),
			"url":         p.URL,
			"downloadURL": p.DownloadURL,
		})
	}
	return out
}
