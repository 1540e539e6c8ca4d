// =============================================================================
// Ledger Checker - Row Normalizer
// =============================================================================
//
// This module cleans raw spreadsheet values before any check runs:
//   - Text columns are trimmed (and upper-cased for purchases)
//   - Placeholder values exported by spreadsheet tools ("nan", "None") are
//     mapped to the empty string
//   - Amount columns are parsed from locale-formatted text
//   - Purchase documents without a number get one (see fill.go)
//   - Known data-entry mistakes are repaired (misplaced VAT counterparty)
//
// ERROR HANDLING:
//   Normalization never fails. An amount that cannot be parsed becomes 0.0;
//   the number of such cells is returned in Stats so the caller can warn.
//
// =============================================================================

package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"golang.org/x/text/unicode/norm"
)

// nonAmountChars matches everything that cannot be part of a dotted decimal.
var nonAmountChars = regexp.MustCompile(`[^\d.]`)

// nullTokens are the textual spellings of a missing cell.
var nullTokens = map[string]bool{
	"NAN":  true,
	"NONE": true,
	"NULL": true,
	"NAT":  true,
	"<NA>": true,
}

// Stats reports what a normalization pass changed.
type Stats struct {
	// FilledDocNumbers is the number of blank document numbers filled.
	FilledDocNumbers int

	// ClearedVAT is the number of VAT rows whose counterparty was cleared.
	ClearedVAT int

	// CoercedAmounts is the number of non-empty amount cells that could not
	// be parsed and were read as 0.0.
	CoercedAmounts int
}

// Normalizer prepares a ledger for the checks.
type Normalizer struct {
	kind   ledger.Kind
	layout ledger.Layout
}

// New creates a Normalizer for a ledger kind and its layout.
func New(kind ledger.Kind, layout ledger.Layout) *Normalizer {
	return &Normalizer{kind: kind, layout: layout}
}

// Normalize mutates l in place and returns what changed.
//
// PURCHASES:
//   1. Text columns: trim, upper-case, null tokens → ""
//   2. Fill blank document numbers
//   3. Clear VAT counterparty mistakes
//   4. Parse amounts
//
// SALES:
//   1. Text columns: trim, null tokens → ""
//   2. Strip punctuation from the client label
//   3. Parse amounts
func (n *Normalizer) Normalize(l *ledger.Ledger) Stats {
	var stats Stats

	for _, r := range l.Rows {
		for _, col := range n.layout.TextColumns {
			if n.kind == ledger.KindPurchases {
				r.Set(col, NormalizeText(r.Get(col)))
			} else {
				r.Set(col, TrimText(r.Get(col)))
			}
		}
		if n.kind == ledger.KindSales && n.layout.Client != "" {
			r.Set(n.layout.Client, CleanClientName(r.Get(n.layout.Client)))
		}
	}

	if n.kind == ledger.KindPurchases {
		stats.FilledDocNumbers = FillDocumentNumbers(l.Rows, n.layout)
		stats.ClearedVAT = ClearMisplacedVAT(l.Rows, n.layout)
	}

	for _, r := range l.Rows {
		var ok bool
		if r.Debit, ok = ParseAmountStrict(r.Get(n.layout.Debit)); !ok {
			stats.CoercedAmounts++
		}
		if r.Credit, ok = ParseAmountStrict(r.Get(n.layout.Credit)); !ok {
			stats.CoercedAmounts++
		}
	}

	return stats
}

// =============================================================================
// TEXT
// =============================================================================

// NormalizeText trims and upper-cases a value; null tokens become "".
func NormalizeText(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if nullTokens[v] {
		return ""
	}
	return v
}

// TrimText trims a value without changing its case; null tokens become "".
func TrimText(v string) string {
	v = strings.TrimSpace(v)
	if nullTokens[strings.ToUpper(v)] {
		return ""
	}
	return v
}

// CleanClientName drops every character that is not a letter, a digit, an
// underscore or whitespace. Input is composed to NFC first so that accents
// typed as combining marks survive as accented letters.
func CleanClientName(v string) string {
	v = norm.NFC.String(v)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			return r
		}
		return -1
	}, v)
}

// =============================================================================
// AMOUNTS
// =============================================================================

// ParseAmount parses a locale-formatted amount.
//
// EXAMPLES:
//   "1 234,50 €" → 1234.5
//   "$60"        → 60
//   ""           → 0
//   "1.234,56"   → 0 (two dots after comma replacement)
func ParseAmount(v string) float64 {
	f, _ := ParseAmountStrict(v)
	return f
}

// ParseAmountStrict parses like ParseAmount and reports false when a
// non-empty value could not be read as a number.
func ParseAmountStrict(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" || nullTokens[strings.ToUpper(v)] {
		return 0, true
	}

	s := strings.ReplaceAll(v, ",", ".")
	s = nonAmountChars.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
