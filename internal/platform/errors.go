package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrCapacityExceeded indicates a cart mutation would exceed the unit cap.
	ErrCapacityExceeded = errors.New("cart capacity exceeded")
)

// NetworkError wraps a transport-level failure (unreachable host, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError wraps a malformed or unexpected response body.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ServerError carries a non-2xx upstream status code.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d", e.StatusCode)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsDecode reports whether err is a DecodeError.
func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsServer reports whether err is a ServerError, returning the status code.
func IsServer(err error) (int, bool) {
	var se *ServerError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}
