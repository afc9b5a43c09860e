package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tabula/internal/config"
	"github.com/aretw0/tabula/internal/logging"
)

// errInvalid signals an invalid report. The report itself was already
// printed, so Execute only sets the exit code.
var errInvalid = errors.New("validation failed")

// app carries what PersistentPreRunE resolved for the subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		schemaDir  string
	)
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "tabula",
		Short:         "Tabula validates tables against schemas",
		Long:          `Tabula checks CSV files, JSON records and SQL query results against declarative table schemas and reports every violation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("schema-dir") {
				cfg.SchemaDir = schemaDir
			}
			level, err := logging.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&schemaDir, "schema-dir", "schemas", "Directory of the schema catalog")

	rootCmd.AddCommand(
		newValidateCmd(a),
		newSchemaCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}
