package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrSinkFull           = fmt.Errorf("sink is full")
	ErrSinkClosed         = fmt.Errorf("sink is closed")
	ErrCoordinatorStopped = fmt.Errorf("coordinator is stopped")
	ErrUnauthorized       = fmt.Errorf("user is not logged in")
	ErrInvalidMessage     = fmt.Errorf("invalid message")
	ErrInvalidUserName    = fmt.Errorf("invalid user name")
	ErrPersistence        = fmt.Errorf("message could not be persisted")
	ErrTokenGeneration    = fmt.Errorf("session token could not be generated")
)

// MapToHTTPStatus translates a service error into the status code returned by handlers.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrInvalidMessage), stderrors.Is(err, ErrInvalidUserName):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrCoordinatorStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
