package backend

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrUnauthorized reports a 401 or 403 from the backend.
	ErrUnauthorized = errors.New("backend rejected credentials")
	// ErrUnavailable reports that the backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrTicketNotFound reports a ticket id absent from the ticket list.
	ErrTicketNotFound = errors.New("ticket not found")
)

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 512

// StatusError reports a non-2xx response that is not an auth failure.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Operation, e.StatusCode, e.Body)
}

func truncateBody(body []byte) string {
	if len(body) <= maxErrorBody {
		return string(body)
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}
