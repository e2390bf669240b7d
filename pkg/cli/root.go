package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/getmockd/imposter/pkg/cliconfig"
	"github.com/getmockd/imposter/pkg/logging"
)

// BuildInfo is injected by the binary at link time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// ExitError carries a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	logLevel  string
	logFormat string
}

// NewRootCmd builds the command tree.
func NewRootCmd(info BuildInfo) *cobra.Command {
	var gf globalFlags

	root := &cobra.Command{
		Use:   "imposter",
		Short: "imposter is a scriptable mock server",
		Long: `imposter mocks HTTP APIs from configuration files.

Every *-config.yaml, *-config.yml or *-config.json file in the configuration
directories declares the plugin that serves it: rest, sfdc or openapi.
Responses come from static files, datasets, OpenAPI examples or scripts.

Defaults can be set in ~/.config/imposter/config.yaml, .imposterrc.yaml in
the working directory, or IMPOSTER_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&gf.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&gf.logFormat, "log-format", "", "Log format: text, json")

	root.AddCommand(
		newServeCmd(&gf, info),
		newValidateCmd(&gf),
		newPluginsCmd(),
		newVersionCmd(info),
	)
	return root
}

// Main runs the CLI with os.Args and returns the process exit code.
func Main(info BuildInfo) int {
	gin.SetMode(gin.ReleaseMode)

	root := NewRootCmd(info)
	root.SetArgs(os.Args[1:])
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 1
	}
	return 0
}

// loadConfig resolves the layered configuration, then applies the flags
// the user actually set.
func loadConfig(cmd *cobra.Command, gf *globalFlags, apply func(cfg *cliconfig.CLIConfig)) (*cliconfig.CLIConfig, error) {
	cfg, err := cliconfig.LoadAll(cliconfig.LoadOptions{})
	if err != nil {
		return nil, err
	}

	flags := &cliconfig.CLIConfig{}
	if cmd.Flags().Changed("log-level") {
		flags.LogLevel = gf.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		flags.LogFormat = gf.logFormat
	}
	if apply != nil {
		apply(flags)
	}
	cliconfig.MergeConfig(cfg, flags, cliconfig.SourceFlag)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *cliconfig.CLIConfig, w io.Writer) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: w,
	})
}
