// =============================================================================
// Ledger Checker - XLSX Writer Module
// =============================================================================
//
// This module writes the corrected ledger back to a workbook the accounting
// tool can import again.
//
// WORKBOOK STRUCTURE:
//   Sheet "Achats" or "Ventes":
//     Row 1      column names, bold, in ledger order
//     Row 2..n   one row per ledger line; Débit and Crédit as numbers
//   Sheet "Contrôle" (when log lines are given):
//     one report line per row
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/xuri/excelize/v2"
)

// LogSheet is the name of the sheet holding the report lines.
const LogSheet = "Contrôle"

// Options contains options for workbook generation.
type Options struct {
	// Sheet is the ledger sheet name. Default: "Achats" or "Ventes".
	Sheet string

	// LogLines, when not empty, are written to LogSheet.
	LogLines []string
}

func (o Options) sheetName(kind ledger.Kind) string {
	if o.Sheet != "" {
		return o.Sheet
	}
	if kind == ledger.KindSales {
		return "Ventes"
	}
	return "Achats"
}

// Write saves the ledger as a workbook at path.
func Write(path string, l *ledger.Ledger, opts Options) error {
	f, err := generate(l, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteTo writes the workbook to w.
func WriteTo(w io.Writer, l *ledger.Ledger, opts Options) error {
	f, err := generate(l, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func generate(l *ledger.Ledger, opts Options) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := opts.sheetName(l.Kind)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeLedger(f, sheet, l); err != nil {
		f.Close()
		return nil, err
	}

	if len(opts.LogLines) > 0 {
		if err := writeLog(f, opts.LogLines); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

// writeLedger streams the header and the rows into sheet.
func writeLedger(f *excelize.File, sheet string, l *ledger.Ledger) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]interface{}, len(l.Headers))
	for i, h := range l.Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range l.Rows {
		values := make([]interface{}, len(l.Headers))
		for j, h := range l.Headers {
			if l.IsAmountColumn(h) {
				values[j] = l.Amount(r, h)
			} else {
				values[j] = r.Get(h)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return nil
}

// writeLog writes one report line per row. Leading newlines used as
// paragraph breaks in the text log become empty rows.
func writeLog(f *excelize.File, lines []string) error {
	if _, err := f.NewSheet(LogSheet); err != nil {
		return fmt.Errorf("failed to create log sheet: %w", err)
	}

	row := 1
	for _, line := range lines {
		for strings.HasPrefix(line, "\n") {
			line = strings.TrimPrefix(line, "\n")
			row++
		}
		if err := f.SetCellStr(LogSheet, fmt.Sprintf("A%d", row), line); err != nil {
			return fmt.Errorf("failed to write log line: %w", err)
		}
		row++
	}
	return nil
}
