package ai

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when a provider answers successfully but
// the body lacks the expected candidate text.
var ErrMalformedResponse = errors.New("malformed completion response")

// StatusError reports a non-2xx HTTP status from a provider endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, body)
}
