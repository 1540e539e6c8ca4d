// =============================================================================
// Ledger Checker - Ledger Model
// =============================================================================
//
// This package contains the shared ledger types used across the pipeline to
// avoid import cycles. Types defined here are used by:
//   - xlsxparser / csvparser (construction)
//   - normalizer, currency (in-place mutation of a snapshot)
//   - validation, report (read, row deletion)
//   - xlsxwriter (export)
//
// A Ledger is the whole imported table. It is owned by a single pipeline run
// and is never shared between goroutines; callers that need to keep the
// input untouched take a snapshot with Clone.
//
// =============================================================================

package ledger

import (
	"slices"
	"strconv"
)

// =============================================================================
// LEDGER KINDS AND ACCOUNTING CONSTANTS
// =============================================================================

// Kind identifies one of the two supported ledger layouts.
type Kind string

const (
	// KindPurchases is the purchase-invoice journal ("AC").
	KindPurchases Kind = "purchases"

	// KindSales is the sales-invoice journal ("VE").
	KindSales Kind = "sales"
)

// Valid reports whether k is a supported ledger kind.
func (k Kind) Valid() bool {
	return k == KindPurchases || k == KindSales
}

const (
	// PayableAccount is the supplier control account, anchor of a purchase document.
	PayableAccount = "401000"

	// ReceivableAccount is the customer control account, anchor of a sales document.
	ReceivableAccount = "411000"

	// VATAccount is the deductible VAT account.
	VATAccount = "445660"

	// AnalyticCode flags an analytic row in the "Code" column.
	AnalyticCode = "A"

	// GeneralCode flags a general-ledger row in the "Code" column.
	GeneralCode = "G"

	// EuroSymbol is the currency marker of a converted or native EUR row.
	EuroSymbol = "€"

	// WorkingColumn holds the original spreadsheet order while a sales
	// ledger is being checked. It never reaches the exported file.
	WorkingColumn = "ordre_excel"
)

// =============================================================================
// ROW
// =============================================================================

// Row is one ledger line.
type Row struct {
	// Index is the stable original-order position (0-based data row).
	Index int

	// Cells holds the text value of every column, keyed by header.
	// Amount columns keep their raw text here until normalization.
	Cells map[string]string

	// Debit and Credit are the parsed amount columns.
	Debit  float64
	Credit float64
}

// NewRow creates an empty row at the given position.
func NewRow(index int) *Row {
	return &Row{Index: index, Cells: make(map[string]string)}
}

// Get returns the text value of a column, or "" if absent.
func (r *Row) Get(column string) string {
	return r.Cells[column]
}

// Set stores the text value of a column.
func (r *Row) Set(column, value string) {
	r.Cells[column] = value
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	c := &Row{
		Index:  r.Index,
		Cells:  make(map[string]string, len(r.Cells)),
		Debit:  r.Debit,
		Credit: r.Credit,
	}
	for k, v := range r.Cells {
		c.Cells[k] = v
	}
	return c
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger is an ordered table of rows sharing one layout.
type Ledger struct {
	// Kind is the layout family of this ledger.
	Kind Kind

	// Layout names the semantic columns.
	Layout Layout

	// Headers is the ordered list of columns, as they will be exported.
	Headers []string

	// Rows is the ordered list of ledger lines.
	Rows []*Row
}

// New creates an empty ledger.
func New(kind Kind, layout Layout, headers []string) *Ledger {
	return &Ledger{
		Kind:    kind,
		Layout:  layout,
		Headers: slices.Clone(headers),
	}
}

// Append adds a row built from an ordered list of cell values.
// Missing trailing cells are stored as "".
func (l *Ledger) Append(values []string) *Row {
	row := NewRow(len(l.Rows))
	for i, h := range l.Headers {
		if i < len(values) {
			row.Cells[h] = values[i]
		} else {
			row.Cells[h] = ""
		}
	}
	l.Rows = append(l.Rows, row)
	return row
}

// Clone returns an independent snapshot of the ledger.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		Kind:    l.Kind,
		Layout:  l.Layout.Clone(),
		Headers: slices.Clone(l.Headers),
		Rows:    make([]*Row, len(l.Rows)),
	}
	for i, r := range l.Rows {
		c.Rows[i] = r.Clone()
	}
	return c
}

// HasColumn reports whether the ledger exports the named column.
func (l *Ledger) HasColumn(name string) bool {
	return slices.Contains(l.Headers, name)
}

// AddColumn appends a column to the headers if not already present.
func (l *Ledger) AddColumn(name string) {
	if !l.HasColumn(name) {
		l.Headers = append(l.Headers, name)
	}
}

// DropColumn removes a column from the headers and from every row.
// Returns false if the column did not exist.
func (l *Ledger) DropColumn(name string) bool {
	i := slices.Index(l.Headers, name)
	if i < 0 {
		return false
	}
	l.Headers = slices.Delete(l.Headers, i, i+1)
	for _, r := range l.Rows {
		delete(r.Cells, name)
	}
	return true
}

// DropRows removes every row whose Index is in the set.
// Remaining rows keep their original Index. Returns the number removed.
func (l *Ledger) DropRows(indices map[int]bool) int {
	if len(indices) == 0 {
		return 0
	}
	before := len(l.Rows)
	l.Rows = slices.DeleteFunc(l.Rows, func(r *Row) bool {
		return indices[r.Index]
	})
	return before - len(l.Rows)
}

// StampWorkingOrder records each row's original position in WorkingColumn.
func (l *Ledger) StampWorkingOrder() {
	l.AddColumn(WorkingColumn)
	for _, r := range l.Rows {
		r.Cells[WorkingColumn] = strconv.Itoa(r.Index)
	}
}

// SyncAmounts rewrites the amount cells from the parsed Debit and Credit, so
// that the exported table carries corrected and converted amounts.
func (l *Ledger) SyncAmounts() {
	for _, r := range l.Rows {
		r.Cells[l.Layout.Debit] = strconv.FormatFloat(r.Debit, 'f', -1, 64)
		r.Cells[l.Layout.Credit] = strconv.FormatFloat(r.Credit, 'f', -1, 64)
	}
}

// IsAmountColumn reports whether a header is one of the two amount columns.
func (l *Ledger) IsAmountColumn(header string) bool {
	return header == l.Layout.Debit || header == l.Layout.Credit
}

// Amount returns the parsed amount for an amount column.
func (l *Ledger) Amount(r *Row, header string) float64 {
	if header == l.Layout.Debit {
		return r.Debit
	}
	return r.Credit
}
