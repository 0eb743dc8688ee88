package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Transform turns a fetched body into a value. It runs on the fetch goroutine.
type Transform[T any] func(body []byte) (T, error)

// JSONTransform decodes the body as JSON into T.
func JSONTransform[T any]() Transform[T] {
	return func(body []byte) (T, error) {
		var v T
		if len(bytes.TrimSpace(body)) == 0 {
			return v, ErrEmptyBody
		}

		if err := json.Unmarshal(body, &v); err != nil {
			return v, fmt.Errorf("failed to decode json: %w", err)
		}

		return v, nil
	}
}

// ImageTransform decodes a PNG, JPEG or GIF body.
func ImageTransform() Transform[image.Image] {
	return func(body []byte) (image.Image, error) {
		if len(body) == 0 {
			return nil, ErrEmptyBody
		}

		img, _, err := image.Decode(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}

		return img, nil
	}
}

// BytesTransform keeps the body as is.
func BytesTransform() Transform[[]byte] {
	return func(body []byte) ([]byte, error) {
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	}
}
