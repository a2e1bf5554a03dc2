package store

import (
	"errors"
	"fmt"
)

// Sentinel classifications for store failures. Callers branch with
// errors.Is; the concrete *StoreError carries op and HTTP status context.
var (
	// ErrUnavailable marks connectivity failures (network errors, gateway
	// timeouts). Re-running the import is safe: all writes are upserts.
	ErrUnavailable = errors.New("store unavailable")

	// ErrRejected marks remote validation failures (4xx/5xx responses).
	ErrRejected = errors.New("store rejected request")

	// ErrNotFound marks a missing object or node.
	ErrNotFound = errors.New("not found")
)

// StoreError wraps a failure from either remote service with the operation
// and HTTP status it occurred on.
type StoreError struct {
	Op     string // e.g. "objectstore.put", "graph.create_node"
	Status int    // HTTP status, 0 for transport-level failures
	Err    error  // sentinel classification
	Cause  error  // underlying error, if any
}

func (e *StoreError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Err, e.Cause)
	case e.Status != 0:
		return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Err, e.Status)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *StoreError) Unwrap() error { return e.Err }

// classifyStatus maps an HTTP response status to a sentinel. Transport
// failures never reach here; they are ErrUnavailable at the call site.
func classifyStatus(status int) error {
	switch {
	case status == 404:
		return ErrNotFound
	case status == 502 || status == 503 || status == 504:
		return ErrUnavailable
	default:
		return ErrRejected
	}
}
