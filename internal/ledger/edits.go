package ledger

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CORRECTION EDITS
// =============================================================================
//
// Edits are the values a reviewer typed in the correction grid for failing
// documents. They are written back into a snapshot before the checks are run
// again. Purchases are matched on (document number, payable account); sales
// are matched on the row's original position.
//
// EXAMPLE (edits.yaml):
//   edits:
//     - document: "01-04"
//       cells:
//         "Compte Tiers": "401DUPONT"
//       credit: 120.50
//     - row: 7
//       cells:
//         "Compte tiers": "411MARTIN"
//
// =============================================================================

// Edit is one corrected record.
type Edit struct {
	// Document selects the anchor row of a purchase document.
	Document string `yaml:"document,omitempty"`

	// Row selects a sales row by original Index.
	Row *int `yaml:"row,omitempty"`

	// Cells are text values to overwrite, keyed by header.
	Cells map[string]string `yaml:"cells,omitempty"`

	// Debit and Credit overwrite the amounts when set.
	Debit  *float64 `yaml:"debit,omitempty"`
	Credit *float64 `yaml:"credit,omitempty"`
}

type editsFile struct {
	Edits []Edit `yaml:"edits"`
}

// LoadEdits reads an edits YAML file.
func LoadEdits(path string) ([]Edit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read edits file: %w", err)
	}

	var f editsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse edits file: %w", err)
	}

	return f.Edits, nil
}

// WithEdits returns a snapshot of l with the edits applied, and the number
// of rows that were changed. An edit that matches no row is an error so that
// a stale correction grid is not silently ignored.
func (l *Ledger) WithEdits(edits []Edit) (*Ledger, int, error) {
	out := l.Clone()
	changed := 0

	for i, e := range edits {
		targets := out.editTargets(e)
		if len(targets) == 0 {
			return nil, 0, fmt.Errorf("edit %d matches no row", i+1)
		}
		for _, r := range targets {
			for col, v := range e.Cells {
				if !out.HasColumn(col) {
					return nil, 0, fmt.Errorf("edit %d: unknown column %q", i+1, col)
				}
				r.Set(col, v)
			}
			if e.Debit != nil {
				r.Debit = *e.Debit
				r.Set(out.Layout.Debit, strconv.FormatFloat(*e.Debit, 'f', -1, 64))
			}
			if e.Credit != nil {
				r.Credit = *e.Credit
				r.Set(out.Layout.Credit, strconv.FormatFloat(*e.Credit, 'f', -1, 64))
			}
			changed++
		}
	}

	return out, changed, nil
}

func (l *Ledger) editTargets(e Edit) []*Row {
	var out []*Row
	switch l.Kind {
	case KindPurchases:
		for _, r := range l.Rows {
			if r.Get(l.Layout.DocNumber) == e.Document && r.Get(l.Layout.Account) == PayableAccount {
				out = append(out, r)
			}
		}
	default:
		if e.Row == nil {
			return nil
		}
		for _, r := range l.Rows {
			if r.Index == *e.Row {
				out = append(out, r)
			}
		}
	}
	return out
}
