package remote

// Status identifies which variant of a FetchState is active.
type Status int

const (
	NotStarted Status = iota // nothing fetched, or offloaded
	Loading                  // request in flight
	Success                  // Value holds the transformed body
	Failure                  // Err holds a *TransportError or *TransformError
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// FetchState is a tagged union over Status. Value is only meaningful when
// Status is Success, Err only when Status is Failure.
type FetchState[T any] struct {
	Status Status
	Value  T
	Err    error
}

func succeeded[T any](value T) FetchState[T] {
	return FetchState[T]{Status: Success, Value: value}
}

func failed[T any](err error) FetchState[T] {
	return FetchState[T]{Status: Failure, Err: err}
}

// Pending reports whether a consumer should still show a loading indicator.
func (s FetchState[T]) Pending() bool {
	return s.Status == NotStarted || s.Status == Loading
}

// Done reports whether the state is terminal for the current load.
func (s FetchState[T]) Done() bool {
	return s.Status == Success || s.Status == Failure
}

// Get returns the value and true when Status is Success.
func (s FetchState[T]) Get() (T, bool) {
	if s.Status != Success {
		var zero T
		return zero, false
	}
	return s.Value, true
}
