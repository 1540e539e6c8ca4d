// =============================================================================
// Ledger Checker - XLSX Ledger Reader
// =============================================================================
//
// This module reads a journal export workbook into a Ledger.
//
// WORKBOOK STRUCTURE (purchases, header on row 2):
//
//   | Row 1 | JOURNAL DES ACHATS - MARS 2025                                    |
//   | Row 2 | Code journal | Date Facture | Compte Généraux | ... | Code       |
//   | Row 3 | AC           | 15/03/2025   | 401000          | ... | G          |
//
// READING STRATEGY:
//   1. Primary: GetRows, which returns cells as the spreadsheet displays them
//      (dates as 15/03/2025, amounts with their number format)
//   2. Fallback: the streaming row iterator with raw cell values, used when
//      the primary read fails on malformed styles or shared strings
//   Only a failure of both is returned as an error. The caller is told when
//   the fallback was used so it can warn.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/xuri/excelize/v2"
)

// ErrNoSheet is returned when the requested worksheet does not exist.
var ErrNoSheet = errors.New("worksheet not found")

// Options controls how a workbook is read.
type Options struct {
	// Sheet is the worksheet name. Empty selects the first sheet.
	Sheet string

	// HeaderRow is the 0-based row holding the column names.
	// Rows above it are titles and are ignored.
	HeaderRow int
}

// Result is a ledger read from a workbook.
type Result struct {
	Ledger *ledger.Ledger

	// Sheet is the worksheet that was read.
	Sheet string

	// Fallback is true when the primary read failed and the raw streaming
	// read was used; PrimaryErr holds the primary failure.
	Fallback   bool
	PrimaryErr error
}

// Read opens a workbook file and reads it as a ledger of the given kind.
func Read(path string, kind ledger.Kind, opts Options) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	return ReadFrom(file, kind, opts)
}

// ReadFrom reads a workbook from r.
func ReadFrom(r io.Reader, kind ledger.Kind, opts Options) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	res := &Result{Sheet: sheet}

	// =========================================================================
	// PRIMARY READ
	// =========================================================================

	cells, err := f.GetRows(sheet)
	if err != nil {
		res.Fallback = true
		res.PrimaryErr = err

		// =====================================================================
		// FALLBACK READ
		// =====================================================================

		cells, err = streamRows(f, sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q (primary: %v): %w", sheet, res.PrimaryErr, err)
		}
	}

	l, err := ledger.FromTable(kind, cells, opts.HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	res.Ledger = l

	return res, nil
}

// resolveSheet returns the sheet to read, defaulting to the first one.
func resolveSheet(f *excelize.File, name string) (string, error) {
	if name == "" {
		name = f.GetSheetName(0)
		if name == "" {
			return "", fmt.Errorf("%w: workbook has no sheets", ErrNoSheet)
		}
		return name, nil
	}

	idx, err := f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrNoSheet, name)
	}
	return name, nil
}

// streamRows reads every row with raw cell values. Dates come back as Excel
// serial numbers and amounts without their number format.
func streamRows(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(out)+1, err)
		}
		out = append(out, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, err
	}

	return out, nil
}
