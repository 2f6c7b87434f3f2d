package advisor

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when an operation is called without a provider key
var ErrNotConfigured = errors.New("OpenAI API key not configured")

// ProviderError reports a failed advisory operation. Message is the
// user-facing "Failed to ..." text answered to clients; Error() also
// carries the cause for logs.
type ProviderError struct {
	Op      string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response from the chat-completions endpoint
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}
