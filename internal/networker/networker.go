package networker

import (
	"context"
	"encoding/json"
)

type FetchResult struct {
	Body        []byte `json:"body"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
}

func (r *FetchResult) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}

// Networker issues one GET per call. Implementations are shared by every
// resource and must be safe for concurrent use.
type Networker interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}
