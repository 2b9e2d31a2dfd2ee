package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weconnect/airbase/pkg/airtable"
	"github.com/weconnect/airbase/pkg/records"
)

var (
	recordsView    string
	recordsFormula string
	recordsFields  []string
)

// recordsCmd groups the record operations.
var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List, fetch, and delete records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list <base> <table>",
	Short: "List records in a table",
	Args:  cobra.ExactArgs(2),
	Example: `  airbase records list "Team CRM" Contacts
  airbase records list appXXXXXXXXXXXXXX Contacts --view "Main View"
  airbase records list appXXXXXXXXXXXXXX Contacts --formula "{Status}='Active'"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := resolveTable(cmd, args[0], args[1])
		if err != nil {
			return err
		}

		var opts []airtable.ListOption
		if recordsView != "" {
			opts = append(opts, airtable.WithView(recordsView))
		}
		if recordsFormula != "" {
			opts = append(opts, airtable.WithFormula(recordsFormula))
		}
		if len(recordsFields) > 0 {
			opts = append(opts, airtable.WithFields(recordsFields...))
		}

		recs, err := table.List(cmd.Context(), opts...)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), recs)
	},
}

var recordsGetCmd = &cobra.Command{
	Use:   "get <base> <table> <record-id>",
	Short: "Fetch one record by ID",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := resolveTable(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		record, err := table.Get(cmd.Context(), args[2])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), record)
	},
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <base> <table> <record-id>...",
	Short: "Delete records by ID",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := resolveTable(cmd, args[0], args[1])
		if err != nil {
			return err
		}

		recs := make([]records.Record, 0, len(args)-2)
		for _, id := range args[2:] {
			recs = append(recs, records.Record{ID: id})
		}

		deleted := make([]string, 0, len(recs))
		for _, chunk := range chunked(recs, airtable.MaxChunkSize) {
			ids, err := table.DeleteRecords(cmd.Context(), chunk)
			if err != nil {
				return err
			}
			deleted = append(deleted, ids...)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d records\n", len(deleted))
		return nil
	},
}

// resolveTable resolves a base by name or ID and returns a handle for the
// named table.
func resolveTable(cmd *cobra.Command, baseArg, tableArg string) (*airtable.Table, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	base, err := client.BaseByName(cmd.Context(), baseArg)
	if err != nil {
		return nil, err
	}
	return base.Table(tableArg), nil
}

// chunked splits recs into slices of at most size records.
func chunked(recs []records.Record, size int) [][]records.Record {
	var chunks [][]records.Record
	for len(recs) > size {
		chunks = append(chunks, recs[:size])
		recs = recs[size:]
	}
	if len(recs) > 0 {
		chunks = append(chunks, recs)
	}
	return chunks
}

func init() {
	recordsListCmd.Flags().StringVar(&recordsView, "view", "", "restrict the listing to a view")
	recordsListCmd.Flags().StringVar(&recordsFormula, "formula", "", "filter the listing by formula")
	recordsListCmd.Flags().StringSliceVar(&recordsFields, "fields", nil, "restrict which fields are returned")

	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsGetCmd)
	recordsCmd.AddCommand(recordsDeleteCmd)
	rootCmd.AddCommand(recordsCmd)
}
