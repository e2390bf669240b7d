package plugin

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/script"
)

// Dependencies is the container handed to plugin factories.
type Dependencies struct {
	Config  *config.ServerConfig
	Logger  *slog.Logger
	Scripts *script.Runner

	// Extras holds module-provided values keyed by name.
	Extras map[string]any
}

// Clone returns a copy whose Extras can be modified independently.
func (d Dependencies) Clone() Dependencies {
	out := d
	out.Extras = make(map[string]any, len(d.Extras))
	maps.Copy(out.Extras, d.Extras)
	return out
}

// Provide stores an extra value under key.
func (d *Dependencies) Provide(key string, v any) {
	if d.Extras == nil {
		d.Extras = make(map[string]any)
	}
	d.Extras[key] = v
}

// Extra returns the value stored under key.
func (d Dependencies) Extra(key string) (any, bool) {
	v, ok := d.Extras[key]
	return v, ok
}

// ExtraAs returns the value stored under key as a T.
func ExtraAs[T any](d Dependencies, key string) (T, error) {
	var zero T
	v, ok := d.Extra(key)
	if !ok {
		return zero, fmt.Errorf("missing dependency %q", key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("dependency %q has type %T, want %T", key, v, zero)
	}
	return t, nil
}

// Module contributes extra dependencies for the plugins that declare it.
type Module struct {
	Name      string
	Configure func(deps *Dependencies) error
}
