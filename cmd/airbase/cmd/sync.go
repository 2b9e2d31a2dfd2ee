package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weconnect/airbase"
	"github.com/weconnect/airbase/internal/config"
	"github.com/weconnect/airbase/pkg/job"
)

var syncJobFilter string

// syncCmd runs the reconciliation jobs in a job file.
var syncCmd = &cobra.Command{
	Use:   "sync <job-file>",
	Short: "Run reconciliation jobs from a YAML job file",
	Long: `Sync reconciles candidate record sets into tables. Each job in the
file names a base, a table, the primary key fields, and the rules for
diffing, linking, and dead-record handling. Candidate records come from
the job's source file.`,
	Args: cobra.ExactArgs(1),
	Example: `  airbase sync jobs.yaml
  airbase sync jobs.yaml --job contacts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := job.Load(args[0])
		if err != nil {
			return err
		}

		key, err := config.APIKey()
		if err != nil {
			return err
		}
		ab, err := airbase.New(airbase.WithAPIKey(key))
		if err != nil {
			return err
		}

		var failures int
		for i := range file.Jobs {
			j := &file.Jobs[i]
			if syncJobFilter != "" && j.Name != syncJobFilter {
				continue
			}
			report, err := ab.SyncJob(cmd.Context(), j)
			if err != nil {
				return fmt.Errorf("job %s: %w", j.Name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
			failures += len(report.Failed)
		}

		if failures > 0 {
			return fmt.Errorf("%d records failed to reconcile", failures)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncJobFilter, "job", "", "run only the named job")
	rootCmd.AddCommand(syncCmd)
}
