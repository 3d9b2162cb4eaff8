package perplexity

import "fmt"

// APIError is returned for any non-2xx response from the completions endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("perplexity returned status %d: %s", e.StatusCode, e.Body)
}
