package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx gateway response.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the response signals a transient condition.
// 429 and 5xx are retryable with backoff; any other 4xx is not.
func (e *Error) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsRetryable classifies any error from a gateway call.
// Network-level failures carry no status and are treated as retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Retryable()
	}
	return true
}
