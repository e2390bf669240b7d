package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/getmockd/imposter/pkg/cliconfig"
	"github.com/getmockd/imposter/pkg/logging"
)

func newValidateCmd(gf *globalFlags) *cobra.Command {
	var (
		configDirs []string
		plugins    []string
	)

	cmd := &cobra.Command{
		Use:   "validate [dir...]",
		Short: "Check configuration without starting the server",
		Long: `Load configuration, instantiate plugins and register every route, then
report what would be served. Nothing is bound to a port.

Directories may be given as arguments or with --config-dir.`,
		Example: `  imposter validate ./petstore`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, gf, func(cfg *cliconfig.CLIConfig) {
				applyTargetFlags(cmd, cfg, configDirs, plugins)
				if len(args) > 0 {
					cfg.ConfigDirs = append(slices.Clone(configDirs), args...)
				}
			})
			if err != nil {
				return err
			}
			return runValidate(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringSliceVarP(&configDirs, "config-dir", "c", nil, "Configuration directory (repeatable)")
	cmd.Flags().StringSliceVarP(&plugins, "plugin", "p", nil, "Plugin to load (repeatable)")
	return cmd
}

func runValidate(out io.Writer, cfg *cliconfig.CLIConfig) error {
	b, err := boot(cfg, "", logging.Nop())
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("invalid configuration: %w", err)}
	}

	routes := b.server.Router().Routes()
	fmt.Fprintf(out, "Configuration valid: %d files, %d plugins, %d routes\n",
		b.groups.Count(), b.registry.Count(), len(routes))

	fmt.Fprintf(out, "Plugins: %s\n", strings.Join(b.registry.Identifiers(), ", "))

	if len(routes) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH")
	for _, r := range routes {
		fmt.Fprintf(w, "%s\t%s\n", r.Method, r.Path)
	}
	return w.Flush()
}
