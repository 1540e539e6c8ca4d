package ledger

import (
	"fmt"
	"strings"
)

// =============================================================================
// TABLE IMPORT
// =============================================================================
//
// Readers (xlsx, csv) hand over a plain grid of cell text. FromTable turns it
// into a Ledger:
//
//   - Rows above headerRow are titles and are skipped
//   - The header row is matched against the layout's columns
//   - Blank rows are skipped; every other row becomes a Row whose Index is
//     its position among the kept data rows
//
// HEADER MATCHING:
//   Purchases: every layout column must appear by name, in any order.
//   Sales: the first len(Columns) columns are renamed positionally, since the
//   sales export labels them inconsistently.
//
// =============================================================================

// FromTable builds a ledger of the given kind from a grid of cells.
func FromTable(kind Kind, cells [][]string, headerRow int) (*Ledger, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown ledger kind %q", kind)
	}
	if headerRow < 0 || headerRow >= len(cells) {
		return nil, fmt.Errorf("header row %d not found (table has %d rows)", headerRow+1, len(cells))
	}

	layout := LayoutFor(kind)
	headers, err := matchHeaders(layout, cells[headerRow])
	if err != nil {
		return nil, err
	}

	l := New(kind, layout, headers)
	for _, row := range cells[headerRow+1:] {
		if isBlank(row) {
			continue
		}
		l.Append(trimCells(row))
	}

	return l, nil
}

func matchHeaders(layout Layout, raw []string) ([]string, error) {
	headers := trimCells(raw)
	for i, h := range headers {
		if h == "" {
			headers[i] = fmt.Sprintf("Colonne %d", i+1)
		}
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	if layout.Positional {
		if len(headers) < len(layout.Columns) {
			// A checked export without its Concierge column keeps the
			// layout names and is read by name.
			if len(headers) == len(layout.Columns)-1 && !present[layout.Concierge] && hasAll(present, layout, layout.Concierge) {
				return headers, nil
			}
			return nil, fmt.Errorf("expected %d columns, found %d", len(layout.Columns), len(headers))
		}
		copy(headers, layout.Columns)
		return headers, nil
	}

	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if seen[h] {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		seen[h] = true
	}
	var missing []string
	for _, c := range layout.Columns {
		// Concierge is dropped from clean exports.
		if !present[c] && c != layout.Concierge {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return headers, nil
}

// hasAll reports whether every layout column but skip is present.
func hasAll(present map[string]bool, layout Layout, skip string) bool {
	for _, c := range layout.Columns {
		if c != skip && !present[c] {
			return false
		}
	}
	return true
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
