// Package cmd provides CLI commands for storectl.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"store-register/internal/config"
	"store-register/internal/database"
	"store-register/internal/ledger"
)

var (
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "Inspect the store credit register and export daily reports",
	Long: `storectl works directly on the store database configured through
the environment (DB_DRIVER, DB_PATH, ...).

Example:
  storectl list --date 2026-10-16
  storectl summary
  storectl export --format all --out ./reports`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				exitOnError(err, "failed to load env file")
			}
		} else {
			_ = godotenv.Load()
		}
		if debug {
			config.SetLogLevel("debug")
		} else {
			config.SetLogLevel("warn")
		}
	},
}

// Execute runs the root command. It is called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
}

// openStore loads configuration and opens the ledger it points at.
func openStore() (*config.Config, *ledger.Store) {
	cfg := config.Load()
	db, err := database.Open(cfg)
	exitOnError(err, "failed to open database")
	return cfg, ledger.New(db, ledger.WithLocation(cfg.Location()))
}

func exitOnError(err error, msg string) {
	if err != nil {
		config.GetLogger().WithError(err).Error(msg)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
