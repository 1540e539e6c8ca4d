// =============================================================================
// Ledger Checker - File Processor
// =============================================================================
//
// This module checks one journal export file end to end, from reading the
// workbook to archiving the input.
//
// FILE PIPELINE:
//   1. Read the export (XLSX, or CSV with the profile's settings)
//   2. Apply reviewer edits, if any, matched on filled document numbers
//   3. Run the checker
//   4. Write the corrected workbook with its "Contrôle" sheet
//   5. Write the check log
//   6. Archive the input when no document failed
//
// DRY RUN:
//   Steps 4 to 6 are skipped. The report is still returned.
//
// CONCURRENCY:
//   A FileProcessor can check several files at once. Each call works on its
//   own ledger; the Checker and the FileManager hold configuration only.
//
// =============================================================================

package checker

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/ledger-checker/internal/config"
	"github.com/ginjaninja78/ledger-checker/internal/csvparser"
	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/ginjaninja78/ledger-checker/internal/normalizer"
	"github.com/ginjaninja78/ledger-checker/internal/report"
	"github.com/ginjaninja78/ledger-checker/internal/xlsxparser"
	"github.com/ginjaninja78/ledger-checker/internal/xlsxwriter"
	"github.com/ginjaninja78/ledger-checker/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// FileResult is the outcome of checking a single file.
type FileResult struct {
	// FilePath is the input file.
	FilePath string

	// Ledger is the name of the profile used to read the file.
	Ledger string

	// OutputFile is the corrected workbook. Empty on dry run or error.
	OutputFile string

	// LogFile is the check log. Empty on dry run or error.
	LogFile string

	// ArchivePath is where the input was moved. Empty when it stayed.
	ArchivePath string

	// Report is the checker outcome. Zero when Error is set.
	Report report.Report

	// Error is set when the file could not be checked or written.
	Error error

	Stats FileStats
}

// FileStats holds counters for the run summary.
type FileStats struct {
	RowsRead       int
	Documents      int
	EditsApplied   int
	ProcessingTime time.Duration
}

// Success reports whether the file was checked and written.
func (r FileResult) Success() bool {
	return r.Error == nil
}

// =============================================================================
// FILE PROCESSOR
// =============================================================================

// FileProcessor checks export files with a shared Checker.
type FileProcessor struct {
	checker *Checker
	files   *utils.FileManager
	main    *config.MainConfig
	logger  Logger

	// DryRun skips every write.
	DryRun bool

	// Edits are applied to every file before the run.
	Edits []ledger.Edit

	// RunID is written in every check log.
	RunID string
}

// NewFileProcessor creates a FileProcessor writing where main points.
func NewFileProcessor(c *Checker, main *config.MainConfig) *FileProcessor {
	return &FileProcessor{
		checker: c,
		files:   utils.NewFileManager(main.InputDir, main.OutputDir, main.InputArchiveDir, main.LogDir),
		main:    main,
		logger:  c.logger,
	}
}

// Process checks one file with a ledger profile.
func (p *FileProcessor) Process(ctx context.Context, path string, profile *config.LedgerConfig) (result FileResult) {
	start := time.Now()
	result = FileResult{FilePath: path, Ledger: profile.LedgerName}
	defer func() { result.Stats.ProcessingTime = time.Since(start) }()

	// =========================================================================
	// STEP 1: READ
	// =========================================================================

	p.logger.Info("Checking %s as %s", filepath.Base(path), profile.LedgerName)

	in, err := ReadLedger(path, profile, p.logger)
	if err != nil {
		result.Error = err
		return result
	}
	result.Stats.RowsRead = len(in.Rows)

	// =========================================================================
	// STEP 2: EDITS
	// =========================================================================

	if len(p.Edits) > 0 {
		edited, applied, err := ApplyEdits(in, p.Edits)
		if err != nil {
			result.Error = fmt.Errorf("failed to apply edits: %w", err)
			return result
		}
		in = edited
		result.Stats.EditsApplied = applied
		p.logger.Debug("Applied %d edit(s)", applied)
	}

	// =========================================================================
	// STEP 3: CHECK
	// =========================================================================

	rep, err := p.checker.Run(ctx, in)
	if err != nil {
		result.Error = err
		return result
	}
	result.Report = rep
	result.Stats.Documents = len(rep.Results)

	if p.DryRun {
		return result
	}

	// =========================================================================
	// STEP 4: WRITE WORKBOOK
	// =========================================================================

	name := utils.GenerateOutputFileName(p.main.OutputNameFormat, path, map[string]string{
		"kind":   string(profile.Kind),
		"ledger": profile.LedgerName,
	})
	outputPath := filepath.Join(p.main.OutputDir, name)

	if err := xlsxwriter.Write(outputPath, rep.Ledger, xlsxwriter.Options{LogLines: rep.Lines}); err != nil {
		result.Error = err
		return result
	}
	result.OutputFile = outputPath
	p.logger.Info("Wrote %s", outputPath)

	// =========================================================================
	// STEP 5: CHECK LOG
	// =========================================================================

	logPath, err := utils.WriteCheckLog(utils.CheckLog{
		InputFile:  path,
		OutputFile: outputPath,
		Ledger:     profile.LedgerName,
		RunID:      p.RunID,
		Lines:      rep.Lines,
	}, p.main.LogDir)
	if err != nil {
		p.logger.Warn("Failed to write check log: %v", err)
	}
	result.LogFile = logPath

	// =========================================================================
	// STEP 6: ARCHIVE
	// =========================================================================

	if !rep.OK() {
		p.logger.Debug("Keeping %s in the input directory: %d document(s) KO", filepath.Base(path), rep.FailingCount)
		return result
	}

	archived, err := p.files.ArchiveInputFile(path)
	if err != nil {
		p.logger.Warn("Failed to archive input: %v", err)
		return result
	}
	result.ArchivePath = archived

	return result
}

// ApplyEdits applies reviewer edits to a snapshot of in. Purchase edits name
// documents by the numbers the check report shows, so blank numbers are
// filled on the snapshot before matching. Every other cell keeps its raw
// text for the run.
func ApplyEdits(in *ledger.Ledger, edits []ledger.Edit) (*ledger.Ledger, int, error) {
	if in == nil {
		return nil, 0, ErrNilLedger
	}
	l := in.Clone()
	if l.Kind == ledger.KindPurchases {
		filled := in.Clone()
		normalizer.New(filled.Kind, filled.Layout).Normalize(filled)
		for i, r := range filled.Rows {
			l.Rows[i].Set(l.Layout.DocNumber, r.Get(l.Layout.DocNumber))
		}
	}
	return l.WithEdits(edits)
}

// ReadLedger reads an export with a profile. XLSX files go through the
// workbook reader, everything else through the CSV reader.
func ReadLedger(path string, profile *config.LedgerConfig, logger Logger) (*ledger.Ledger, error) {
	if logger == nil {
		logger = nopLogger{}
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		res, err := xlsxparser.Read(path, profile.Kind, xlsxparser.Options{
			Sheet:     profile.Sheet,
			HeaderRow: profile.Header(),
		})
		if err != nil {
			return nil, err
		}
		if res.Fallback {
			logger.Warn("Read %s with the raw reader (%v); dates may appear as serial numbers", filepath.Base(path), res.PrimaryErr)
		}
		return res.Ledger, nil
	}

	return csvparser.Parse(path, profile.Kind, profile.CSVSettings, profile.Header())
}
