package alfalfa

import (
	"github.com/five82/alfalfa/internal/fanout"
	"github.com/five82/alfalfa/internal/sim"
)

type (
	// ClientError is a local failure. Its Kind tells a bad argument, an
	// unknown point, a network failure and a timeout apart.
	ClientError = sim.ClientError
	ErrorKind   = sim.ErrorKind
	// APIError is a rejection by the server (status >= 400).
	APIError = sim.APIError
	// SimulationError reports a run that entered the error state.
	SimulationError = sim.SimulationError
)

// ItemError wraps the failure of one input of a batch call.
type ItemError[T any] = fanout.ItemError[T]

const (
	KindInvalidArgument = sim.KindInvalidArgument
	KindPointNotFound   = sim.KindPointNotFound
	KindNetwork         = sim.KindNetwork
	KindTimeout         = sim.KindTimeout
	KindCanceled        = sim.KindCanceled
	KindUnsupported     = sim.KindUnsupported
	KindDecode          = sim.KindDecode
)

// NewClientError builds a ClientError with a formatted message.
func NewClientError(kind ErrorKind, format string, args ...any) *ClientError {
	return sim.NewClientError(kind, format, args...)
}

// IsTransient reports whether err came from the network and may succeed on
// retry. API errors and simulation errors are never transient.
func IsTransient(err error) bool {
	return sim.IsTransient(err)
}

// IsNotFound reports whether err is a 404 APIError.
func IsNotFound(err error) bool {
	return sim.IsNotFound(err)
}
