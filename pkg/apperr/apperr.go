// Package apperr defines the error kinds shared by every service and the
// mapping from those kinds to HTTP status codes at the handler boundary.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated means no resolvable identity was attached to the call.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNotFound means the referenced document, invitation or request is absent.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the caller is authenticated but lacks the required role.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict means the mutation collides with existing state, e.g. a
	// duplicate pending invitation or an already-processed invitation.
	ErrConflict = errors.New("conflict")
	// ErrExpired means the invitation is past its expiry at accept time.
	ErrExpired = errors.New("expired")
)

// Status maps an error to an HTTP status code. Unknown errors are treated as
// internal failures.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
