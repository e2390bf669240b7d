// Package server hosts the HTTP side of imposter.
//
// A Server owns a gin engine with request ID, access log, metrics and
// recovery middleware. Plugins never see the engine directly: they register
// handlers through Router, which rejects duplicate and conflicting routes
// with ErrRouteConflict instead of panicking.
//
// Two system endpoints are always present:
//
//	GET /system/status   JSON status document
//	GET /system/metrics  Prometheus exposition
package server
