package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var errInvalidQueryParam = errors.New("invalid query parameter")

// getPathUUID parses a UUID path parameter. ok is false when the parameter is
// missing or malformed.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// getPathString returns the unescaped value of a path parameter.
func getPathString(r *http.Request, paramName string) string {
	raw := chi.URLParam(r, paramName)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// getQueryInt reads an integer query parameter, returning def when absent.
func getQueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errInvalidQueryParam
	}
	return n, nil
}
