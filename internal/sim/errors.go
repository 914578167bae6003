package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a ClientError.
type ErrorKind int

const (
	KindInvalidArgument ErrorKind = iota + 1
	KindPointNotFound
	KindNetwork
	KindTimeout
	KindCanceled
	KindUnsupported
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindPointNotFound:
		return "point not found"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindUnsupported:
		return "unsupported"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// ClientError is a local failure: a bad argument, an unresolved point, a
// connection problem or an operation that ran out of time.
type ClientError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("alfalfa client error (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("alfalfa client error (%s): %s", e.Kind, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewClientError builds a ClientError with a formatted message.
func NewClientError(kind ErrorKind, format string, args ...any) *ClientError {
	return &ClientError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// APIError is returned when the server answers with a status >= 400.
type APIError struct {
	StatusCode int
	Message    string
	Payload    json.RawMessage
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Payload) > 0 {
		return fmt.Sprintf("alfalfa api error (status %d): %s (payload: %s)", e.StatusCode, msg, string(e.Payload))
	}
	return fmt.Sprintf("alfalfa api error (status %d): %s", e.StatusCode, msg)
}

// IsNotFound reports whether the server did not know the resource.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// SimulationError reports a run that entered the error state.
type SimulationError struct {
	RunID RunID
	Log   string
	// Err is set when the error log itself could not be fetched.
	Err error
}

func (e *SimulationError) Error() string {
	log := strings.TrimSpace(e.Log)
	if log == "" {
		log = "no error log available"
	}
	return fmt.Sprintf("run %s failed: %s", e.RunID, log)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is worth retrying. Only network failures
// qualify; API errors are never transient.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Kind == KindNetwork
	}
	return false
}

// IsNotFound reports whether err carries a 404 APIError.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}
