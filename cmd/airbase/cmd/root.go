// Package cmd implements the airbase CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weconnect/airbase/internal/config"
	"github.com/weconnect/airbase/pkg/airtable"
	"github.com/weconnect/airbase/pkg/logging"
)

var (
	configFile string
	verbose    bool
	quiet      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "airbase",
	Short: "Tabular service client and record reconciler",
	Long: `Airbase is a client for Airtable-style tabular web services with a
record reconciliation engine on top.

It lists bases, tables, and records, and runs declarative sync jobs that
reconcile a candidate record set into a table: creating, updating,
flagging, and deleting records in rate-limited batches.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
	rootCmd.Version = version

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.airbase.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("Failed to bind verbose flag: %v", err))
	}
	if err := viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet")); err != nil {
		panic(fmt.Sprintf("Failed to bind quiet flag: %v", err))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".airbase")
	}

	// Load .env files first, before Viper env binding. .env.local wins.
	loadEnvFile(".env")
	loadEnvFile(".env.local")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.BindEnv(strings.ToLower(airtable.APIKeyEnvVar), airtable.APIKeyEnvVar); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind %s: %v\n", airtable.APIKeyEnvVar, err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	configureLogging()
}

// configureLogging sets up the logging system based on configuration.
func configureLogging() {
	level := zerolog.InfoLevel
	if verbose || viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	if quiet || viper.GetBool("quiet") {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	logging.SetDefault(logging.Default().Level(level))
}

// loadEnvFile loads a single .env file using godotenv.
func loadEnvFile(filename string) {
	if err := godotenv.Load(filename); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Loaded %s\n", filename)
	}
}

// newClient builds an API client from the resolved configuration.
func newClient() (*airtable.Client, error) {
	key, err := config.APIKey()
	if err != nil {
		return nil, err
	}
	return airtable.NewClient(airtable.WithAPIKey(key))
}
