package photos

import (
	"fmt"
	"net/url"
	"strings"
)

// Photo is one entry of the picsum /v2/list response.
type Photo struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
}

func ListURL(baseURL string) string {
	return baseURL + "/v2/list"
}

// ImageID is the second path segment of the download URL
// (https://picsum.photos/id/{id}/{w}/{h}).
func (p Photo) ImageID() (string, error) {
	u, err := url.Parse(p.DownloadURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDownloadURL, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[1] == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedDownloadURL, p.DownloadURL)
	}

	return segments[1], nil
}

// ThumbnailURL is a size x size crop of the photo.
func (p Photo) ThumbnailURL(baseURL string, size int) (string, error) {
	id, err := p.ImageID()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/id/%s/%d/%d", baseURL, url.PathEscape(id), size, size), nil
}
