package lmstudio

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned when the server answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "lmstudio http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("lmstudio http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("lmstudio http error: status=%d body=%s", e.StatusCode, e.Body)
}

// isTransient reports whether err is worth retrying later: transport
// failures, timeouts, 429 and 5xx responses.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return !errors.Is(err, errEmptyReply) && !errors.Is(err, errBadReply)
}

var (
	errEmptyReply = errors.New("model returned an empty reply")
	errBadReply   = errors.New("model reply is not a chat completion")
)
