package photos

import "errors"

var (
	ErrMalformedDownloadURL = errors.New("malformed download url")
	ErrUnknownPhoto         = errors.New("unknown photo")
	ErrAuthorsNotLoaded     = errors.New("author list not loaded")
)
