// Package behaviour holds the per-request response state that scripts use
// to override or short-circuit the built-in response logic.
//
// A Behaviour starts in the DEFAULT state with status 200 and no response
// file. Builder methods mutate it in place and return the receiver so that
// calls chain:
//
//	b.WithStatusCode(404).WithEmpty().Immediately()
//
// Every mutation is last-write-wins. A Behaviour belongs to a single request
// and is never shared between goroutines.
package behaviour

import (
	"maps"
	"net/http"
	"sort"
)

// Type selects whether built-in resolution runs after the script.
type Type string

// Behaviour types.
const (
	// Default hands the behaviour to the plugin's built-in resolution.
	Default Type = "DEFAULT"

	// Immediate emits the status and file (or empty body) as is.
	Immediate Type = "IMMEDIATE"
)

// Behaviour is the mutable response state of one request.
type Behaviour struct {
	Type         Type
	StatusCode   int
	ResponseFile string
	Empty        bool
	Headers      map[string]string
}

// New returns a fresh behaviour: DEFAULT, status 200, no file, not empty.
func New() *Behaviour {
	return &Behaviour{
		Type:       Default,
		StatusCode: http.StatusOK,
	}
}

// WithStatusCode sets the response status code.
func (b *Behaviour) WithStatusCode(code int) *Behaviour {
	b.StatusCode = code
	return b
}

// WithFile sets the response file and clears any earlier WithEmpty.
func (b *Behaviour) WithFile(path string) *Behaviour {
	b.ResponseFile = path
	b.Empty = false
	return b
}

// WithEmpty requests an empty body and clears the response file.
func (b *Behaviour) WithEmpty() *Behaviour {
	b.Empty = true
	b.ResponseFile = ""
	return b
}

// WithHeader sets a response header. A later call for the same name wins.
func (b *Behaviour) WithHeader(name, value string) *Behaviour {
	if b.Headers == nil {
		b.Headers = make(map[string]string)
	}
	b.Headers[http.CanonicalHeaderKey(name)] = value
	return b
}

// UsingDefaultBehaviour selects built-in resolution.
func (b *Behaviour) UsingDefaultBehaviour() *Behaviour {
	b.Type = Default
	return b
}

// Immediately skips built-in resolution.
func (b *Behaviour) Immediately() *Behaviour {
	b.Type = Immediate
	return b
}

// Respond is a readability marker with no effect.
func (b *Behaviour) Respond() *Behaviour {
	return b
}

// RespondWith invokes fn with the behaviour before returning it.
func (b *Behaviour) RespondWith(fn func(*Behaviour)) *Behaviour {
	if fn != nil {
		fn(b)
	}
	return b
}

// And is a readability marker with no effect.
func (b *Behaviour) And() *Behaviour {
	return b
}

// Clone returns an independent copy of the behaviour.
func (b *Behaviour) Clone() *Behaviour {
	out := *b
	out.Headers = maps.Clone(b.Headers)
	return &out
}

// IsImmediate reports whether built-in resolution is skipped.
func (b *Behaviour) IsImmediate() bool {
	return b.Type == Immediate
}

// HasFile reports whether a response file is set and the body is not
// explicitly empty.
func (b *Behaviour) HasFile() bool {
	return !b.Empty && b.ResponseFile != ""
}

// ApplyHeaders copies the behaviour's headers onto h in sorted order.
func (b *Behaviour) ApplyHeaders(h http.Header) {
	names := make([]string, 0, len(b.Headers))
	for name := range b.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Set(name, b.Headers[name])
	}
}
