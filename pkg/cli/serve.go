package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/imposter/pkg/cliconfig"
	"github.com/getmockd/imposter/pkg/server"
)

type serveFlags struct {
	host          string
	port          int
	serverURL     string
	configDirs    []string
	plugins       []string
	scriptTimeout time.Duration
}

func newServeCmd(gf *globalFlags, info BuildInfo) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock server",
		Long: `Start the mock server.

Configuration files are discovered in each --config-dir. By default the
detector plugin loads every plugin the files declare. Plugins named with
--plugin replace that default: only they, and any plugins they provide,
are loaded.`,
		Example: `  # Serve the configuration in the current directory
  imposter serve

  # Serve two directories on port 9090
  imposter serve -c ./petstore -c ./accounts --port 9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, gf, f.apply(cmd))
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cmd.OutOrStdout(), cfg, info)
		},
	}

	cmd.Flags().StringVar(&f.host, "host", "", "Address to bind")
	cmd.Flags().IntVar(&f.port, "port", 0, "Port to listen on")
	cmd.Flags().StringVar(&f.serverURL, "server-url", "", "Externally visible base URL")
	cmd.Flags().StringSliceVarP(&f.configDirs, "config-dir", "c", nil, "Configuration directory (repeatable)")
	cmd.Flags().StringSliceVarP(&f.plugins, "plugin", "p", nil, "Plugin to load instead of the detector (repeatable)")
	cmd.Flags().DurationVar(&f.scriptTimeout, "script-timeout", 0, "Maximum duration of a single script run")
	return cmd
}

func (f *serveFlags) apply(cmd *cobra.Command) func(cfg *cliconfig.CLIConfig) {
	return func(cfg *cliconfig.CLIConfig) {
		applyTargetFlags(cmd, cfg, f.configDirs, f.plugins)
		if cmd.Flags().Changed("host") {
			cfg.Host = f.host
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = f.port
		}
		if cmd.Flags().Changed("server-url") {
			cfg.ServerURL = f.serverURL
		}
		if cmd.Flags().Changed("script-timeout") {
			cfg.ScriptTimeout = f.scriptTimeout
		}
	}
}

// applyTargetFlags copies the flags shared by serve and validate.
func applyTargetFlags(cmd *cobra.Command, cfg *cliconfig.CLIConfig, dirs, plugins []string) {
	if cmd.Flags().Changed("config-dir") {
		cfg.ConfigDirs = dirs
	}
	if cmd.Flags().Changed("plugin") {
		cfg.Plugins = plugins
	}
}

func runServe(parent context.Context, out io.Writer, cfg *cliconfig.CLIConfig, info BuildInfo) error {
	if parent == nil {
		parent = context.Background()
	}
	log := newLogger(cfg, os.Stderr)

	b, err := boot(cfg, info.Version, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.server.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Mock server listening on %s\n", cfg.ServerConfig().ResolveServerURL())
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()
	return b.server.Shutdown(shutdownCtx)
}
