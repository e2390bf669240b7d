package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/getmockd/imposter/pkg/plugins"
)

func newPluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the built-in plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tALIASES\tDESCRIPTION")
			for _, reg := range plugins.Catalogue().List() {
				aliases := "-"
				if len(reg.Aliases) > 0 {
					aliases = strings.Join(reg.Aliases, ",")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", reg.ID, aliases, reg.Description)
			}
			return w.Flush()
		},
	}
}
