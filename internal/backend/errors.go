package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors for backend responses.
var (
	ErrBadRequest       = errors.New("backend: bad request")
	ErrForbidden        = errors.New("backend: forbidden")
	ErrNotFound         = errors.New("backend: not found")
	ErrMethodNotAllowed = errors.New("backend: method not allowed")
	ErrRateLimited      = errors.New("backend: rate limited by server")
	ErrServer           = errors.New("backend: server error")
	ErrUnexpectedStatus = errors.New("backend: unexpected status")
	ErrNoUser           = errors.New("backend: no catalogue user configured for mutations")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op     string // "listImages", "createImageTag", ...
	Path   string
	Status int // 0 when no response was received
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %s [%s] status %d: %v", e.Op, e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("backend %s [%s]: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, path string, status int, err error) error {
	return &Error{Op: op, Path: path, Status: status, Err: err}
}

// statusError maps a non-2xx status to a sentinel.
func statusError(status int) error {
	switch {
	case status == 400:
		return ErrBadRequest
	case status == 403:
		return ErrForbidden
	case status == 404:
		return ErrNotFound
	case status == 405:
		return ErrMethodNotAllowed
	case status == 429:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return ErrUnexpectedStatus
	}
}
