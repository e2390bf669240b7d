package script

import (
	"context"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getmockd/imposter/pkg/behaviour"
	"github.com/getmockd/imposter/pkg/logging"
)

// exprEnv is the environment expressions are compiled against.
type exprEnv struct {
	Context map[string]any              `expr:"context"`
	Respond func() *behaviour.Behaviour `expr:"respond"`
	Log     func(msg string) bool       `expr:"log"`
}

// ExprEngine evaluates expr-lang expressions. Compiled programs are cached
// by source text.
type ExprEngine struct {
	programMu    sync.RWMutex
	programCache map[string]*vm.Program
}

// NewExprEngine creates an expression engine.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{
		programCache: make(map[string]*vm.Program),
	}
}

// Execute evaluates src against env. The result of the expression is
// ignored; only its effect on the behaviour matters.
func (e *ExprEngine) Execute(ctx context.Context, src Source, env *Env) error {
	program, err := e.compile(string(src.Code))
	if err != nil {
		return fmt.Errorf("%w: %s: compile: %v", ErrScriptFailed, src.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrScriptTimeout, src.Name)
	}

	log := logging.OrNop(env.Logger)
	b := env.Behaviour
	runEnv := exprEnv{
		Context: env.Request.Map(),
		Respond: func() *behaviour.Behaviour { return b },
		Log: func(msg string) bool {
			log.Info(msg, "script", src.Name)
			return true
		},
	}

	if _, err := expr.Run(program, runEnv); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrScriptFailed, src.Name, err)
	}
	return nil
}

func (e *ExprEngine) compile(code string) (*vm.Program, error) {
	e.programMu.RLock()
	if program, ok := e.programCache[code]; ok {
		e.programMu.RUnlock()
		return program, nil
	}
	e.programMu.RUnlock()

	program, err := expr.Compile(code, expr.Env(exprEnv{}))
	if err != nil {
		return nil, err
	}

	e.programMu.Lock()
	if existing, ok := e.programCache[code]; ok {
		e.programMu.Unlock()
		return existing, nil
	}
	e.programCache[code] = program
	e.programMu.Unlock()

	return program, nil
}
