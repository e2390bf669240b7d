// Package resource turns a resolved response behaviour into bytes on the
// wire.
//
// Handler implements the per-request contract shared by every plugin: build
// a fresh behaviour, layer the resource's configured defaults onto it, run
// the resource's script, then either emit the behaviour as is (IMMEDIATE) or
// hand it to the plugin's default resolution (DEFAULT).
//
// Two default resolutions are provided. ResolveObject serves a static file.
// ResolveArray looks a record up in a dataset by the single path parameter
// of the resource's path template.
package resource
