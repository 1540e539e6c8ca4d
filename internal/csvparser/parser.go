// =============================================================================
// Ledger Checker - CSV Ledger Reader
// =============================================================================
//
// Some accounting tools export the journals as CSV instead of XLSX. This
// module reads such a file into a Ledger with the same column contract as
// the workbook reader.
//
// ENCODING:
//   French exports are often Windows-1252 or ISO-8859-1. The configured
//   encoding is decoded to UTF-8 before parsing, so headers such as
//   "Crédit (€)" match the layout.
//
// DELIMITER:
//   Semicolon is the usual separator when the decimal mark is a comma.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/ledger-checker/internal/config"
	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Parse reads a CSV file as a ledger of the given kind.
func Parse(filePath string, kind ledger.Kind, settings config.CSVSettings, headerRow int) (*ledger.Ledger, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, kind, settings, headerRow)
}

// ParseReader reads CSV from r.
func ParseReader(r io.Reader, kind ledger.Kind, settings config.CSVSettings, headerRow int) (*ledger.Ledger, error) {
	enc, err := lookupEncoding(settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(bufio.NewReader(enc.NewDecoder().Reader(r)))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	return ledger.FromTable(kind, allRows, headerRow)
}

// configureReader applies delimiter and quoting settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ",", "comma":
		reader.Comma = ','
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = []rune(settings.Delimiter)[0]
		} else {
			reader.Comma = ';'
		}
	}

	// Title rows are shorter than data rows.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
}

// lookupEncoding maps a configured encoding name to a decoder.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return unicode.UTF8BOM, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	case "ISO-8859-15", "LATIN9", "LATIN-9":
		return charmap.ISO8859_15, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}
