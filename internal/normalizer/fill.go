package normalizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/ledger-checker/internal/ledger"
)

// =============================================================================
// DOCUMENT NUMBER FILL
// =============================================================================
//
// Purchase exports often leave "n° de piece" blank on the payable line of a
// new invoice and on its charge lines. The fill is a single forward fold over
// the rows in original order carrying the last document number seen:
//
//   | account | in      | lastCode before | out     |
//   |---------|---------|-----------------|---------|
//   | 401000  | ""      | (none)          | "01-01" |
//   | 401000  | "01-05" | "01-01"         | "01-05" |
//   | 604000  | ""      | "01-05"         | "01-05" |
//   | 401000  | ""      | "01-05"         | "01-06" |
//
// Rows that already carry a number are never rewritten, so running the fill
// on its own output changes nothing.
//
// =============================================================================

// defaultFirstCode is used when a payable row needs a number before any
// number has been seen.
const defaultFirstCode = "01-01"

// fillState is the value carried across the fold.
type fillState struct {
	lastCode string
	filled   int
}

// FillDocumentNumbers fills blank document numbers in place and returns how
// many cells were filled.
func FillDocumentNumbers(rows []*ledger.Row, layout ledger.Layout) int {
	state := fillState{}
	for _, r := range rows {
		state = fillStep(state, r, layout)
	}
	return state.filled
}

// fillStep applies one row to the fold state.
func fillStep(s fillState, r *ledger.Row, layout ledger.Layout) fillState {
	cur := strings.TrimSpace(r.Get(layout.DocNumber))

	if r.Get(layout.Account) == ledger.PayableAccount {
		if cur != "" {
			s.lastCode = cur
			return s
		}
		next := defaultFirstCode
		if s.lastCode != "" {
			next = nextCode(s.lastCode)
		}
		r.Set(layout.DocNumber, next)
		s.lastCode = next
		s.filled++
		return s
	}

	if cur == "" && s.lastCode != "" {
		r.Set(layout.DocNumber, s.lastCode)
		s.filled++
	}
	return s
}

// nextCode increments the numeric suffix of a "MM-NN" code, keeping the
// month prefix and the suffix width ("01-05" → "01-06", "03-9" → "03-10").
// A code without a numeric suffix gets "-1" appended; the format check will
// then flag it.
func nextCode(code string) string {
	i := strings.LastIndex(code, "-")
	if i < 0 {
		return code + "-1"
	}
	prefix, suffix := code[:i], code[i+1:]
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return code + "-1"
	}
	return fmt.Sprintf("%s-%0*d", prefix, len(suffix), n+1)
}

// =============================================================================
// VAT COUNTERPARTY CLEANUP
// =============================================================================

// ClearMisplacedVAT clears the counterparty of VAT rows whose counterparty
// was filled with the VAT account itself. Returns the number of rows fixed.
func ClearMisplacedVAT(rows []*ledger.Row, layout ledger.Layout) int {
	cleared := 0
	for _, r := range rows {
		if r.Get(layout.Account) == ledger.VATAccount && r.Get(layout.Counterparty) == ledger.VATAccount {
			r.Set(layout.Counterparty, "")
			cleared++
		}
	}
	return cleared
}
