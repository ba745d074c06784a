package royale

import "fmt"

// ThrottledError indicates the API rejected the request with HTTP 429 and
// the client exhausted its backoff retries.
type ThrottledError struct {
	URL        string
	RetryAfter string
	Attempts   int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("throttled after %d attempts: %s", e.Attempts, e.URL)
}

// UnavailableError indicates the API could not serve the request (server
// error or transport failure). The call is not retryable; callers treat the
// item as yielding no data.
type UnavailableError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api unavailable: %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("api unavailable (HTTP %d): %s", e.StatusCode, e.URL)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// NotFoundError indicates the requested resource does not exist.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.URL)
}

// APIError represents a structured error payload returned by the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Reason     string `json:"reason"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (HTTP %d): %s: %s", e.StatusCode, e.Reason, e.Message)
}
