package ggrc

import "errors"

var (
	// ErrServer is returned for 5xx responses
	ErrServer = errors.New("server error")

	// ErrUnauthorized is returned for 401 and 403 responses
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBadRequest is returned for 4xx responses without field errors
	ErrBadRequest = errors.New("bad request")

	// ErrUnexpectedStatus is returned for any other non-2xx response
	ErrUnexpectedStatus = errors.New("unexpected status")
)
