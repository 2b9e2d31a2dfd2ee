package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// tablesCmd lists a base's tables with their schema summary.
var tablesCmd = &cobra.Command{
	Use:   "tables <base>",
	Short: "List tables in a base",
	Args:  cobra.ExactArgs(1),
	Example: `  airbase tables appXXXXXXXXXXXXXX
  airbase tables "Team CRM"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		base, err := client.BaseByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tables, err := base.Tables(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			type row struct {
				ID           string `json:"id"`
				Name         string `json:"name"`
				PrimaryField string `json:"primaryField,omitempty"`
				Fields       int    `json:"fields"`
				Views        int    `json:"views"`
			}
			rows := make([]row, len(tables))
			for i, t := range tables {
				rows[i] = row{
					ID:           t.ID,
					Name:         t.Name,
					PrimaryField: t.PrimaryFieldName,
					Fields:       len(t.Fields),
					Views:        len(t.Views),
				}
			}
			return printJSON(cmd.OutOrStdout(), rows)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRIMARY FIELD\tFIELDS\tVIEWS")
		for _, t := range tables {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", t.ID, t.Name, t.PrimaryFieldName, len(t.Fields), len(t.Views))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
