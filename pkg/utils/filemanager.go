// =============================================================================
// Ledger Checker - File Manager Utilities
// =============================================================================
//
// This module provides file system helpers for the process command:
//   - Discovering journal exports in the input directory
//   - Naming the corrected workbook and its check log
//   - Archiving inputs whose documents all passed
//   - Writing the per-file check log and the run summary
//
// DIRECTORY STRUCTURE:
//   input/            <- journal exports to check (.xlsx, .csv)
//   output/           <- corrected workbooks
//   input_archive/    <- inputs with zero failing documents
//   logs/             <- one check log per input, one summary per run
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InputExtensions are the file types the checker reads.
var InputExtensions = []string{".xlsx", ".csv"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles input discovery, archival and log files.
type FileManager struct {
	InputDir string

	OutputDir string

	InputArchiveDir string

	LogDir string

	// UseTimestampSubdirs archives into YYYY/MM/DD subdirectories.
	UseTimestampSubdirs bool
}

// NewFileManager creates a FileManager.
func NewFileManager(inputDir, outputDir, inputArchiveDir, logDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
		LogDir:          logDir,
	}
}

// EnsureDirectories creates every managed directory.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DiscoverInputFiles lists the readable exports in the input directory,
// sorted by name. Office lock files ("~$...") are skipped.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if IsInputFile(e.Name()) {
			result = append(result, filepath.Join(fm.InputDir, e.Name()))
		}
	}
	sort.Strings(result)

	return result, nil
}

// IsInputFile reports whether a path has a supported extension.
func IsInputFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range InputExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// =============================================================================
// ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input into the archive directory. A move across
// file systems falls back to copy and remove.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		return filepath.Join(archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName)
	}

	return filepath.Join(archiveDir, fileName)
}

// =============================================================================
// OUTPUT NAMING
// =============================================================================

// GenerateOutputFileName expands a name format.
//
// PLACEHOLDERS:
//   {uuid}       random UUID
//   {timestamp}  20250315_142501
//   {date}       20250315
//   {original}   input file name without extension
//   any key of params, as {key}
//
// The result always ends in .xlsx.
func GenerateOutputFileName(format, inputPath string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{original}":  strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".xlsx") {
		result += ".xlsx"
	}

	return result
}

// =============================================================================
// CHECK LOG
// =============================================================================

// CheckLog is the text log written next to a corrected workbook.
type CheckLog struct {
	InputFile  string
	OutputFile string
	Ledger     string
	RunID      string
	Lines      []string
}

// WriteCheckLog writes the log as {output name}.log in dir.
func WriteCheckLog(entry CheckLog, dir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(entry.OutputFile), filepath.Ext(entry.OutputFile))
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(entry.InputFile), filepath.Ext(entry.InputFile))
	}
	logPath := filepath.Join(dir, base+".log")

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create check log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Ledger Checker - Contrôle\n"+
		"Generated: %s\n"+
		"Run:       %s\n"+
		"Ledger:    %s\n"+
		"Input:     %s\n"+
		"Output:    %s\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		entry.RunID,
		entry.Ledger,
		entry.InputFile,
		entry.OutputFile)

	for _, line := range entry.Lines {
		fmt.Fprintln(writer, line)
	}

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush check log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// SUMMARY LOG
// =============================================================================

// ProcessingSummary aggregates one process run.
type ProcessingSummary struct {
	RunID            string
	StartTime        time.Time
	EndTime          time.Time
	TotalFiles       int
	CleanFiles       int
	FilesWithKO      int
	ErroredFiles     int
	TotalDocuments   int
	FailingDocuments int
	DeletedRows      int
	ProcessedFiles   []ProcessedFileInfo
	FailedFilesList  []FailedFileInfo
}

// ProcessedFileInfo describes one checked file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	ArchivePath string
	Ledger      string
	Documents   int
	Failing     []string
	ProcessTime time.Duration
}

// FailedFileInfo describes a file that could not be checked.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes the run summary into dir.
func WriteSummaryLog(summary ProcessingSummary, dir string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	summaryPath := filepath.Join(dir, fmt.Sprintf("processing_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Ledger Checker - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Clean:              %d\n"+
		"  With KO documents:  %d\n"+
		"  Errored:            %d\n"+
		"  Documents:          %d\n"+
		"  Failing Documents:  %d\n"+
		"  Deleted Rows:       %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TotalFiles,
		summary.CleanFiles,
		summary.FilesWithKO,
		summary.ErroredFiles,
		summary.TotalDocuments,
		summary.FailingDocuments,
		summary.DeletedRows)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Checked Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Ledger:       %s\n", pf.Ledger)
			if pf.OutputFile != "" {
				fmt.Fprintf(writer, "  Output:       %s\n", pf.OutputFile)
			}
			if pf.ArchivePath != "" {
				fmt.Fprintf(writer, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(writer, "  Documents:    %d\n", pf.Documents)
			if len(pf.Failing) > 0 {
				fmt.Fprintf(writer, "  KO:           %s\n", strings.Join(pf.Failing, ", "))
			}
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Errored Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists reports whether a path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
