package server

import "errors"

// Errors returned by the router and server lifecycle.
var (
	ErrRouteConflict  = errors.New("route conflicts with an existing route")
	ErrInvalidRoute   = errors.New("invalid route")
	ErrAlreadyStarted = errors.New("server already started")
)
