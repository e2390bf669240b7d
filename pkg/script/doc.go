// Package script runs user scripts against a request's response behaviour.
//
// Two engines are provided:
//
//   - StarlarkEngine runs .star and .py files with go.starlark.net
//   - ExprEngine evaluates a single expr-lang expression from .expr files
//
// Both engines see the same environment: respond() returns the request's
// behaviour, and context.request exposes the method, path, path and query
// parameters, headers and body of the incoming request. A Starlark script
// looks like:
//
//	if context.request.pathParams["id"] == "3":
//	    respond().withStatusCode(404).withEmpty().immediately()
//
// and the equivalent expression is:
//
//	context.request.pathParams.id == "3" ? respond().WithStatusCode(404).WithEmpty().Immediately() : respond()
//
// A Runner picks the engine by file extension, caches script sources and
// bounds every execution with a timeout.
package script
