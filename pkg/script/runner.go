package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/logging"
)

// Runner selects an engine by file extension and executes scripts with a
// timeout. Script sources are read once and cached.
type Runner struct {
	timeout time.Duration
	log     *slog.Logger

	engines map[string]Engine

	mu      sync.RWMutex
	sources map[string][]byte
}

// NewRunner creates a runner with the Starlark and expression engines
// registered. A non-positive timeout selects config.DefaultScriptTimeout.
func NewRunner(timeout time.Duration, log *slog.Logger) *Runner {
	if timeout <= 0 {
		timeout = config.DefaultScriptTimeout
	}
	r := &Runner{
		timeout: timeout,
		log:     logging.OrNop(log),
		engines: make(map[string]Engine),
		sources: make(map[string][]byte),
	}
	starlarkEngine := NewStarlarkEngine()
	r.Register(".star", starlarkEngine)
	r.Register(".py", starlarkEngine)
	r.Register(".expr", NewExprEngine())
	return r
}

// Register associates a file extension (including the dot) with an engine.
func (r *Runner) Register(ext string, engine Engine) {
	r.engines[strings.ToLower(ext)] = engine
}

// Timeout returns the execution bound.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// ScriptPath resolves the resource's script file against its base directory.
func ScriptPath(rc *config.ResourceConfig) string {
	path := rc.Response.ScriptFile
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rc.BaseDir, path)
}

// Run executes the script declared by rc against env. It returns
// ErrScriptTimeout when the script does not finish within the timeout.
func (r *Runner) Run(ctx context.Context, rc *config.ResourceConfig, env *Env) error {
	path := ScriptPath(rc)
	if path == "" {
		return nil
	}

	engine, ok := r.engines[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedScript, path)
	}

	code, err := r.source(path)
	if err != nil {
		return err
	}

	if env.Logger == nil {
		env.Logger = r.log
	}
	if env.Resource == nil {
		env.Resource = rc
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// The script works on a copy. A timed-out script keeps running until it
	// notices cancellation, and must not touch the caller's behaviour.
	scriptEnv := *env
	scriptEnv.Behaviour = env.Behaviour.Clone()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() {
		errCh <- engine.Execute(ctx, Source{Name: path, Code: code}, &scriptEnv)
	}()

	select {
	case <-ctx.Done():
		r.log.Warn("script timed out", "script", path, "timeout", r.timeout)
		return fmt.Errorf("%w after %v: %s", ErrScriptTimeout, r.timeout, path)
	case err := <-errCh:
		if err != nil {
			if !errors.Is(err, ErrScriptFailed) && !errors.Is(err, ErrScriptTimeout) {
				err = fmt.Errorf("%w: %v", ErrScriptFailed, err)
			}
			return err
		}
		*env.Behaviour = *scriptEnv.Behaviour
		r.log.Debug("script executed", "script", path, "duration", time.Since(start),
			"behaviour", env.Behaviour.Type, "status", env.Behaviour.StatusCode)
		return nil
	}
}

func (r *Runner) source(path string) ([]byte, error) {
	r.mu.RLock()
	code, ok := r.sources[path]
	r.mu.RUnlock()
	if ok {
		return code, nil
	}

	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read script: %v", ErrScriptFailed, err)
	}

	r.mu.Lock()
	r.sources[path] = code
	r.mu.Unlock()
	return code, nil
}
