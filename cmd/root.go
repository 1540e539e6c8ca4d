// =============================================================================
// Ledger Checker - Root Command
// =============================================================================
//
// This file defines the root command of the CLI. Every other command is
// attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (ledgercheck)
//   ├── processCmd  (ledgercheck process)
//   ├── validateCmd (ledgercheck validate)
//   └── versionCmd  (ledgercheck version)
//
// CONFIGURATION:
//   The root command sets up the global flags (--config, --verbose) and loads
//   a .env file from the working directory before any command runs, so that
//   LEDGERCHECK_* variables can be kept out of the shell profile.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/ledger-checker/internal/checker"
	"github.com/ginjaninja78/ledger-checker/internal/config"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile is the main configuration file. A missing file selects the
// built-in defaults.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "ledgercheck",
	Short: "Ledger Checker - Validate and auto-correct purchase and sales journal exports",
	Long: `Ledger Checker reads purchase ("achats") and sales ("ventes") journal exports,
fixes what can be fixed automatically, checks every accounting document
against the rules of its journal and writes a corrected workbook with a
"Contrôle" sheet listing every finding.

Key Features:
  - Purchase documents: missing numbers filled, empty 401000 rows completed
  - Sales documents: foreign-currency invoices converted to EUR
  - One verdict per document (OK / KO) with the reasons
  - Clean inputs archived, failing inputs kept for review

Example Usage:
  ledgercheck process                          # Check every file in the input directory
  ledgercheck process --single --file x.xlsx   # Check one file
  ledgercheck process --edits corrections.yaml # Re-run with reviewer corrections
  ledgercheck validate                         # Show the resolved configuration`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(".env")
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the main configuration. When the default config.yaml is
// absent the built-in defaults are used; an explicit --config must exist.
func loadConfig(cmd *cobra.Command) (*config.MainConfig, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		return config.DefaultMainConfig(), nil
	}

	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	return mainConfig, nil
}

// newLogger builds the operational logger. Logs go to stderr so that the
// report on stdout stays readable.
func newLogger(mainConfig *config.MainConfig) checker.Logger {
	level := checker.ParseLevel(mainConfig.LogLevel)
	if verbose {
		level = checker.ParseLevel("debug")
	}
	return checker.NewLogger(os.Stderr, level)
}
