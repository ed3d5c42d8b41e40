package gateway

import (
	"errors"
	"fmt"
)

// TransportError means the request could not be sent or completed
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NetworkError means the API answered with a non-2xx status
type NetworkError struct {
	Path   string
	Status int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Status)
}

// MalformedDataError means the body does not have the expected shape
type MalformedDataError struct {
	Path string
	Err  error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed response for %s: %v", e.Path, e.Err)
}

func (e *MalformedDataError) Unwrap() error { return e.Err }

// Kind names the error class for logs and metrics
func Kind(err error) string {
	var te *TransportError
	var ne *NetworkError
	var me *MalformedDataError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ne):
		return "network"
	case errors.As(err, &te):
		return "transport"
	case errors.As(err, &me):
		return "malformed"
	default:
		return "unknown"
	}
}
