package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited indicates the gateway returned 429. Surfaced to the
	// user as a wait-and-retry message; never retried automatically.
	ErrRateLimited = errors.New("gateway rate limited")

	// ErrQuotaExhausted indicates the gateway returned 402.
	ErrQuotaExhausted = errors.New("gateway quota exhausted")

	// ErrTransport indicates the request never produced an HTTP response.
	ErrTransport = errors.New("gateway transport failure")
)

// UpstreamError is any other non-2xx response from the gateway.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gateway returned status %d", e.Status)
}
