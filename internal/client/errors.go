package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Client errors, matched with errors.Is against an *APIError.
var (
	ErrUnauthorized = errors.New("not signed in")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("rejected by the server")
	ErrUnavailable  = errors.New("service unavailable")
	ErrServer       = errors.New("server error")
)

// APIError is a non-2xx response decoded from an RFC 9457 problem body.
type APIError struct {
	Status int
	Title  string
	Detail string
	Errors []string
}

func (e *APIError) Error() string {
	msg := e.Title
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("api error (status=%d): %s", e.Status, msg)
}

// Unwrap maps the status to a sentinel error.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusConflict:
		return ErrConflict
	case e.Status == http.StatusServiceUnavailable || e.Status == http.StatusBadGateway ||
		e.Status == http.StatusGatewayTimeout:
		return ErrUnavailable
	case e.Status >= 500:
		return ErrServer
	case e.Status >= 400:
		return ErrInvalid
	}
	return nil
}
