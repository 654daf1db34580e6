package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("internal server error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given param is not valid")

	// ErrTimeout means a request exceeded its deadline and was aborted.
	ErrTimeout = errors.New("request timed out")
	// ErrNetwork means a transport-level failure (DNS, refused, offline).
	ErrNetwork = errors.New("network failure")
	// ErrNoUser means no user id could be resolved from local storage.
	ErrNoUser = errors.New("no user in session")
	// ErrClosed means the controller was closed and accepts no more work.
	ErrClosed = errors.New("controller is closed")
	// ErrSnapshotMiss means no feed snapshot has been stored yet.
	ErrSnapshotMiss = errors.New("no feed snapshot stored")
)

// StatusError is returned when the remote service answers outside 2xx.
// The code is surfaced verbatim.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote service returned status %d", e.Code)
}

// IsFetchError reports whether err belongs to the fetch error category:
// timeout, transport failure or a non-2xx status.
func IsFetchError(err error) bool {
	var se *StatusError
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork) || errors.As(err, &se)
}
