package script

import (
	"context"
	"fmt"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/getmockd/imposter/pkg/behaviour"
	"github.com/getmockd/imposter/pkg/logging"
)

// fileOptions allows top-level control flow so that scripts can branch on
// the request without wrapping everything in a function.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// StarlarkEngine runs Starlark scripts.
type StarlarkEngine struct{}

// NewStarlarkEngine creates a Starlark engine.
func NewStarlarkEngine() *StarlarkEngine {
	return &StarlarkEngine{}
}

// Execute runs src. The thread is cancelled when ctx is done.
func (e *StarlarkEngine) Execute(ctx context.Context, src Source, env *Env) error {
	log := logging.OrNop(env.Logger)

	thread := &starlark.Thread{
		Name: src.Name,
		Print: func(_ *starlark.Thread, msg string) {
			log.Info(msg, "script", src.Name)
		},
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	request, err := requestStruct(env.Request)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrScriptFailed, src.Name, err)
	}

	bv := &behaviourValue{b: env.Behaviour}
	predeclared := starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
		"context": starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
			"request": request,
		}),
		"respond": starlark.NewBuiltin("respond", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			return bv, nil
		}),
		"log": starlark.NewBuiltin("log", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var msg string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &msg); err != nil {
				return nil, err
			}
			log.Info(msg, "script", src.Name)
			return starlark.None, nil
		}),
	}

	if _, err := starlark.ExecFileOptions(fileOptions, thread, src.Name, src.Code, predeclared); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s", ErrScriptTimeout, src.Name)
		}
		return fmt.Errorf("%w: %s: %v", ErrScriptFailed, src.Name, err)
	}
	return nil
}

// requestStruct exposes the request fields as struct attributes; the
// parameter and header maps stay dicts.
func requestStruct(rc RequestContext) (*starlarkstruct.Struct, error) {
	fields := make(starlark.StringDict)
	for k, v := range rc.Map()["request"].(map[string]any) {
		sv, err := toStarlarkValue(v)
		if err != nil {
			return nil, err
		}
		fields[k] = sv
	}
	return starlarkstruct.FromStringDict(starlarkstruct.Default, fields), nil
}

// behaviourValue exposes a behaviour to Starlark with camelCase methods.
type behaviourValue struct {
	b *behaviour.Behaviour
}

var (
	_ starlark.Value    = (*behaviourValue)(nil)
	_ starlark.HasAttrs = (*behaviourValue)(nil)
)

func (v *behaviourValue) String() string {
	return fmt.Sprintf("behaviour(%s, %d)", v.b.Type, v.b.StatusCode)
}
func (v *behaviourValue) Type() string          { return "behaviour" }
func (v *behaviourValue) Freeze()               {}
func (v *behaviourValue) Truth() starlark.Bool  { return starlark.True }
func (v *behaviourValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: behaviour") }

type behaviourMethod func(v *behaviourValue, thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error

var behaviourMethods = map[string]behaviourMethod{
	"withStatusCode": func(v *behaviourValue, _ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
		var code int
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &code); err != nil {
			return err
		}
		v.b.WithStatusCode(code)
		return nil
	},
	"withFile": func(v *behaviourValue, _ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
		var path string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &path); err != nil {
			return err
		}
		v.b.WithFile(path)
		return nil
	},
	"withHeader": func(v *behaviourValue, _ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
		var name, value string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &name, &value); err != nil {
			return err
		}
		v.b.WithHeader(name, value)
		return nil
	},
	"respondWith": func(v *behaviourValue, thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
		var fn starlark.Callable
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &fn); err != nil {
			return err
		}
		_, err := starlark.Call(thread, fn, starlark.Tuple{v}, nil)
		return err
	},
	"withEmpty":             noArgs(func(b *behaviour.Behaviour) { b.WithEmpty() }),
	"usingDefaultBehaviour": noArgs(func(b *behaviour.Behaviour) { b.UsingDefaultBehaviour() }),
	"immediately":           noArgs(func(b *behaviour.Behaviour) { b.Immediately() }),
	"respond":               noArgs(func(b *behaviour.Behaviour) { b.Respond() }),
}

func noArgs(fn func(*behaviour.Behaviour)) behaviourMethod {
	return func(v *behaviourValue, _ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
			return err
		}
		fn(v.b)
		return nil
	}
}

// Attr returns the named method bound to the behaviour. Every method
// returns the behaviour so that calls chain.
func (v *behaviourValue) Attr(name string) (starlark.Value, error) {
	method, ok := behaviourMethods[name]
	if !ok {
		return nil, nil
	}
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := method(v, thread, b, args, kwargs); err != nil {
			return nil, err
		}
		return v, nil
	}), nil
}

// AttrNames lists the behaviour methods.
func (v *behaviourValue) AttrNames() []string {
	names := make([]string, 0, len(behaviourMethods))
	for name := range behaviourMethods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// toStarlarkValue converts a Go value to a Starlark value.
func toStarlarkValue(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case float64:
		return starlark.Float(val), nil
	case string:
		return starlark.String(val), nil
	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := toStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dict := starlark.NewDict(len(val))
		for _, k := range keys {
			sv, err := toStarlarkValue(val[k])
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}
