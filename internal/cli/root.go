// Package cli wires the calculation, validation and report engines into the
// cbam command-line tool.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/carbonfabric/cbam/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the cbam CLI. It wires up
// configuration loading, logging and the subcommands (calculate, validate,
// finalize, report, factors).
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.Result

	cmd := &cobra.Command{
		Use:     "cbam",
		Short:   "CBAM embedded-emissions toolkit",
		Long:    "cbam computes embedded greenhouse-gas emissions, validates the dataset and generates regulatory XML reports",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			result := setupLogging(cmd, cfg)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if logResult != nil {
				return logResult.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "path to config file (default $CBAM_CONFIG or ~/.cbam/config.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("store", "", "path to the sqlite store (overrides config)")

	cmd.AddCommand(newCalculateCmd(), newValidateCmd(), newFinalizeCmd(), newReportCmd(), newFactorsCmd())

	return cmd
}

const rootCmdExample = `  # Compute emissions for a period
  cbam calculate --org ORG1 --period 2026-Q1

  # Validate the dataset and the latest calculation
  cbam validate --org ORG1 --period 2026-Q1 --calculation CALC_ID

  # Browse findings interactively
  cbam validate --org ORG1 --period 2026-Q1 --tui

  # Lock the calculation once it has passed validation
  cbam finalize --calculation CALC_ID

  # Generate the regulatory XML report
  cbam report --org ORG1 --period 2026-Q1 --calculation CALC_ID -o report.xml

  # Import reference emission factors
  cbam factors import --file factors.yaml`
