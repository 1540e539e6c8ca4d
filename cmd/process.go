// =============================================================================
// Ledger Checker - Process Command
// =============================================================================
//
// This file defines the 'process' command, the main command of the tool. It
// checks journal exports and writes the corrected workbooks.
//
// COMMAND USAGE:
//   ledgercheck process [flags]
//
// FLAGS:
//   --dry-run : Check without writing or archiving anything
//   --single  : Check only one file (specify with --file)
//   --file    : Path to the file to check (used with --single)
//   --ledger  : Check only files matching this ledger profile
//   --kind    : Force the ledger kind (purchases or sales) of --file
//   --edits   : YAML file of reviewer corrections applied before the check
//
// PROCESSING PIPELINE:
//   1. Load the main configuration and the ledger profiles
//   2. Discover exports in the input directory (or take --file)
//   3. Match each file to a ledger profile
//   4. Check the files concurrently, at most max_concurrency at a time
//   5. Print each file's report and write the run summary log
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ginjaninja78/ledger-checker/internal/checker"
	"github.com/ginjaninja78/ledger-checker/internal/config"
	"github.com/ginjaninja78/ledger-checker/internal/currency"
	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/ginjaninja78/ledger-checker/pkg/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var dryRun bool

var singleFile bool

var filePath string

// ledgerName filters processing to one ledger profile.
var ledgerName string

// kindName forces the ledger kind of a single file.
var kindName string

// editsPath is the reviewer corrections file.
var editsPath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Check journal exports and write corrected workbooks",
	Long: `The process command scans the input directory for journal exports (.xlsx
and .csv), matches each one to a ledger profile, and checks every document.

Files are checked concurrently. An error in one file does not stop the
others.

For every checked file:
  - The corrected workbook is written to the output directory, with the
    findings on a "Contrôle" sheet
  - A check log is written to the log directory
  - The input is moved to the archive when every document is OK, and kept
    in the input directory otherwise`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Check without writing output files or archiving inputs")
	processCmd.Flags().BoolVar(&singleFile, "single", false, "Check only a single file (use with --file)")
	processCmd.Flags().StringVar(&filePath, "file", "", "Path to a specific file to check (used with --single)")
	processCmd.Flags().StringVar(&ledgerName, "ledger", "", "Check only files matching this ledger profile")
	processCmd.Flags().StringVar(&kindName, "kind", "", "Ledger kind of --file when its name matches no profile (purchases or sales)")
	processCmd.Flags().StringVar(&editsPath, "edits", "", "YAML file of corrections applied before the check")
}

// fileJob is one file with the profile that reads it.
type fileJob struct {
	path    string
	profile *config.LedgerConfig
	err     error
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Fprintln(out, titleStyle.Render("=== Ledger Checker ==="))

	mainConfig, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	profiles, err := config.LoadLedgerConfigs(mainConfig.ConfigsDir)
	if err != nil {
		return fmt.Errorf("failed to load ledger configs: %w", err)
	}
	fmt.Fprintf(out, "Loaded %d ledger profile(s)\n", len(profiles))

	var edits []ledger.Edit
	if editsPath != "" {
		edits, err = ledger.LoadEdits(editsPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Loaded %d correction(s) from %s\n", len(edits), pathStyle.Render(editsPath))
	}

	fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir, mainConfig.LogDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if singleFile {
		if filePath == "" {
			return fmt.Errorf("--single requires --file")
		}
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = fm.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	forced, err := forcedProfile(profiles)
	if err != nil {
		return err
	}

	jobs := matchProfiles(inputFiles, profiles, forced)
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No export to check in the input directory.")
		return nil
	}
	fmt.Fprintf(out, "Found %d file(s) to check\n", len(jobs))

	// =========================================================================
	// STEP 3: CHECK FILES CONCURRENTLY
	// =========================================================================

	runID := uuid.New().String()
	logger := newLogger(mainConfig)
	rates := currency.NewFrankfurterClient(mainConfig.Rates.BaseURL, mainConfig.Rates.Timeout)

	processor := checker.NewFileProcessor(checker.New(rates).WithLogger(logger), mainConfig)
	processor.DryRun = dryRun
	processor.Edits = edits
	processor.RunID = runID

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	limit := mainConfig.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	results := make(chan checker.FileResult, len(jobs))

	for _, job := range jobs {
		if job.err != nil {
			results <- checker.FileResult{FilePath: job.path, Error: job.err}
			continue
		}

		wg.Add(1)
		go func(job fileJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results <- processor.Process(ctx, job.path, job.profile)
		}(job)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	var collected []checker.FileResult
	for result := range results {
		collected = append(collected, result)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].FilePath < collected[j].FilePath })

	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  startTime,
		TotalFiles: len(collected),
	}

	for _, result := range collected {
		name := filepath.Base(result.FilePath)
		fmt.Fprintln(out)

		if !result.Success() {
			summary.ErroredFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("✗ %s: %v", name, result.Error)))
			continue
		}

		rep := result.Report
		if rep.OK() {
			summary.CleanFiles++
			fmt.Fprintln(out, successStyle.Render("✓ "+name))
		} else {
			summary.FilesWithKO++
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("✗ %s: %d document(s) KO", name, rep.FailingCount)))
		}
		summary.TotalDocuments += result.Stats.Documents
		summary.FailingDocuments += rep.FailingCount
		summary.DeletedRows += rep.Deleted
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   result.FilePath,
			OutputFile:  result.OutputFile,
			ArchivePath: result.ArchivePath,
			Ledger:      result.Ledger,
			Documents:   result.Stats.Documents,
			Failing:     rep.Failing,
			ProcessTime: result.Stats.ProcessingTime,
		})

		printReport(out, rep.Lines)
		if result.OutputFile != "" {
			fmt.Fprintf(out, "%s %s\n", infoStyle.Render("→"), pathStyle.Render(result.OutputFile))
		}
	}

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("=== Check Complete ==="))
	fmt.Fprintf(out, "Total files:       %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Clean:             %d\n", summary.CleanFiles)
	fmt.Fprintf(out, "With KO documents: %d\n", summary.FilesWithKO)
	fmt.Fprintf(out, "Errors:            %d\n", summary.ErroredFiles)
	fmt.Fprintf(out, "Time elapsed:      %s\n", summary.EndTime.Sub(startTime).Round(time.Millisecond))

	if dryRun {
		fmt.Fprintln(out, warnStyle.Render("Dry run: nothing was written."))
		return nil
	}

	summaryPath, err := utils.WriteSummaryLog(summary, mainConfig.LogDir)
	if err != nil {
		logger.Warn("Failed to write summary log: %v", err)
	} else {
		fmt.Fprintf(out, "Summary log:       %s\n", pathStyle.Render(summaryPath))
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// matchProfiles pairs each file with its ledger profile. Files matching no
// profile are reported as errors, except when --ledger filters them out.
func matchProfiles(files []string, profiles map[string]*config.LedgerConfig, forced *config.LedgerConfig) []fileJob {
	var jobs []fileJob
	for _, path := range files {
		profile, ok := config.MatchLedger(profiles, path)
		if forced != nil {
			profile, ok = forced, true
		}

		if ledgerName != "" && (!ok || profile.LedgerName != ledgerName) {
			continue
		}
		if !ok {
			jobs = append(jobs, fileJob{path: path, err: fmt.Errorf("no matching ledger profile found")})
			continue
		}
		if _, err := os.Stat(path); err != nil {
			jobs = append(jobs, fileJob{path: path, err: err})
			continue
		}
		jobs = append(jobs, fileJob{path: path, profile: profile})
	}
	return jobs
}

// forcedProfile resolves --kind to a profile. It returns nil when the flag
// is not set.
func forcedProfile(profiles map[string]*config.LedgerConfig) (*config.LedgerConfig, error) {
	if kindName == "" {
		return nil, nil
	}
	kind := ledger.Kind(kindName)
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown ledger kind %q (expected %s or %s)", kindName, ledger.KindPurchases, ledger.KindSales)
	}
	if p, ok := config.ForKind(profiles, kind); ok {
		return p, nil
	}
	return config.DefaultLedgerConfigs()[defaultProfileName(kind)], nil
}

func defaultProfileName(kind ledger.Kind) string {
	if kind == ledger.KindSales {
		return "ventes"
	}
	return "achats"
}
