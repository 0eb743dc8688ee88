package networker

import "errors"

var (
	ErrNotAllowedByRobots = errors.New("not allowed by robots.txt")
)
