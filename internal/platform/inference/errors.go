package inference

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is returned when the sidecar answers 2xx with a body
// the client cannot use.
var ErrMalformedResponse = errors.New("malformed inference response")

// HTTPError is returned when the sidecar answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "inference http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("inference http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("inference http error: status=%d body=%s", e.StatusCode, e.Body)
}

func retryable(err error) bool {
	if err == nil || errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return true
}
