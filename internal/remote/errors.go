package remote

import (
	"errors"
	"fmt"
)

var (
	ErrBadStatus      = errors.New("unexpected response status")
	ErrEmptyBody      = errors.New("empty response body")
	ErrTransformPanic = errors.New("transform panicked")
	ErrOffloaded      = errors.New("offloaded before the load finished")
)

// TransportError is published when the request itself failed or the server
// answered with a status >= 400.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch %s (status %d): %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TransformError is published when the body was fetched but could not be
// turned into a value.
type TransformError struct {
	URL string
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("failed to transform body of %s: %v", e.URL, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
