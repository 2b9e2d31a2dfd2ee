package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// basesCmd lists the bases visible to the configured API key.
var basesCmd = &cobra.Command{
	Use:   "bases",
	Short: "List bases visible to the API key",
	Args:  cobra.NoArgs,
	Example: `  airbase bases
  airbase bases --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		bases, err := client.Bases(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			type row struct {
				ID              string `json:"id"`
				Name            string `json:"name"`
				PermissionLevel string `json:"permissionLevel,omitempty"`
			}
			rows := make([]row, len(bases))
			for i, b := range bases {
				rows[i] = row{ID: b.ID, Name: b.Name, PermissionLevel: b.PermissionLevel}
			}
			return printJSON(cmd.OutOrStdout(), rows)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPERMISSION")
		for _, b := range bases {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Name, b.PermissionLevel)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(basesCmd)
}
