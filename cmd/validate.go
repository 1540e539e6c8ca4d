// =============================================================================
// Ledger Checker - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It loads the main configuration
// and the ledger profiles the way 'process' does, prints them, and lists the
// input files each profile would pick up. Nothing is read or written.
//
// COMMAND USAGE:
//   ledgercheck validate [--config config.yaml]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ginjaninja78/ledger-checker/internal/config"
	"github.com/ginjaninja78/ledger-checker/pkg/utils"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration without checking any file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	mainConfig, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	profiles, err := config.LoadLedgerConfigs(mainConfig.ConfigsDir)
	if err != nil {
		return fmt.Errorf("failed to load ledger configs: %w", err)
	}

	printMainConfig(out, mainConfig)
	fmt.Fprintln(out)
	printProfiles(out, profiles)

	fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir, mainConfig.LogDir)
	files, err := fm.DiscoverInputFiles()
	if err != nil {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("⚠️ Input directory not readable: %v", err)))
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Input files (%d)", len(files))))
	for _, f := range files {
		name := filepath.Base(f)
		if p, ok := config.MatchLedger(profiles, f); ok {
			fmt.Fprintf(out, "  %s %s -> %s\n", successStyle.Render("✓"), name, p.LedgerName)
		} else {
			fmt.Fprintf(out, "  %s %s\n", errorStyle.Render("✗"), errorStyle.Render(name+": no matching ledger profile"))
		}
	}

	return nil
}

func printMainConfig(w io.Writer, c *config.MainConfig) {
	fmt.Fprintln(w, titleStyle.Render("Configuration"))
	fmt.Fprintf(w, "  Input:           %s\n", pathStyle.Render(c.InputDir))
	fmt.Fprintf(w, "  Output:          %s\n", pathStyle.Render(c.OutputDir))
	fmt.Fprintf(w, "  Archive:         %s\n", pathStyle.Render(c.InputArchiveDir))
	fmt.Fprintf(w, "  Profiles:        %s\n", pathStyle.Render(c.ConfigsDir))
	fmt.Fprintf(w, "  Logs:            %s\n", pathStyle.Render(c.LogDir))
	fmt.Fprintf(w, "  Log level:       %s\n", c.LogLevel)
	fmt.Fprintf(w, "  Output name:     %s\n", c.OutputNameFormat)
	fmt.Fprintf(w, "  Concurrency:     %d\n", c.MaxConcurrency)
	fmt.Fprintf(w, "  Rates service:   %s (timeout %s)\n", c.Rates.BaseURL, c.Rates.Timeout)
}

func printProfiles(w io.Writer, profiles map[string]*config.LedgerConfig) {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Ledger profiles (%d)", len(profiles))))
	for _, name := range names {
		p := profiles[name]
		sheet := p.Sheet
		if sheet == "" {
			sheet = "(first)"
		}
		fmt.Fprintf(w, "  %s [%s]\n", infoStyle.Render(name), p.Kind)
		fmt.Fprintf(w, "    patterns:   %s\n", strings.Join(p.FileMatchingPatterns, ", "))
		fmt.Fprintf(w, "    sheet:      %s, header row %d\n", sheet, p.Header())
		fmt.Fprintf(w, "    csv:        delimiter %q, encoding %q\n", p.CSVSettings.Delimiter, p.CSVSettings.Encoding)
	}
}
