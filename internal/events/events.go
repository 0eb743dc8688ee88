package events

import (
	"context"
	"encoding/json"
	"time"

	"photo-loader/internal/photos"
)

// Event is the wire form of a photos.Change.
type Event struct {
	Source  string    `json:"source"`
	Kind    string    `json:"kind"`
	PhotoID string    `json:"photoID,omitempty"`
	URL     string    `json:"url"`
	Status  string    `json:"status"`
	Error   string    `json:"error,omitempty"`
	Photos  int       `json:"photos,omitempty"`
	At      time.Time `json:"at"`
}

func (e *Event) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

type Sink interface {
	Publish(event *Event)
	Stop(ctx context.Context) error
}

func FromChange(source string, change photos.Change) *Event {
	event := &Event{
		Source:  source,
		Kind:    string(change.Kind),
		PhotoID: change.PhotoID,
		URL:     change.URL,
		Status:  change.Status.String(),
		Photos:  len(change.Photos),
		At:      time.Now().UTC(),
	}

	if change.Err != nil {
		event.Error = change.Err.Error()
	}

	return event
}

// Forward publishes every change of catalog to sink.
func Forward(catalog *photos.Catalog, sink Sink, source string) {
	catalog.Subscribe(func(change photos.Change) {
		sink.Publish(FromChange(source, change))
	})
}
