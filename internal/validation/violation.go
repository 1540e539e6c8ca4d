// =============================================================================
// Ledger Checker - Validation Engine
// =============================================================================
//
// This module checks one document at a time against the accounting rules of
// its journal. It produces:
//   - An ordered list of violations, each tagged with a rule and a severity
//   - The auto-corrections applied to the anchor row (purchases only)
//   - The rows found empty after correction, to be deleted by the caller
//
// SEVERITY:
//   Blocking violations mark the document KO and hold back the export.
//   Informational violations are reported but do not block. The mapping from
//   rule to severity is a per-journal policy, never derived from the message.
//
// STATELESSNESS:
//   Validators hold configuration only. Running a validator twice on an
//   already-corrected document yields the same violations and no correction.
//
// =============================================================================

package validation

import (
	"github.com/ginjaninja78/ledger-checker/internal/ledger"
)

// =============================================================================
// VIOLATIONS
// =============================================================================

// Severity classifies a violation.
type Severity int

const (
	// Informational violations are logged but do not fail the document.
	Informational Severity = iota

	// Blocking violations fail the document.
	Blocking
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	if s == Blocking {
		return "blocking"
	}
	return "informational"
}

// Rule identifies the check that produced a violation.
type Rule string

const (
	RuleJournalCode          Rule = "journal_code"
	RuleInvoiceDateFormat    Rule = "invoice_date_format"
	RuleInvoiceDateUnique    Rule = "invoice_date_unique"
	RuleDocNumberFormat      Rule = "doc_number_format"
	RuleDocNumberMissing     Rule = "doc_number_missing"
	RuleLabelUnique          Rule = "label_unique"
	RuleAnchorMissing        Rule = "anchor_missing"
	RuleAnchorMultiple       Rule = "anchor_multiple"
	RuleAnchorCount          Rule = "anchor_count"
	RuleAnchorEmpty          Rule = "anchor_empty"
	RuleAnchorDirection      Rule = "anchor_direction"
	RuleAnchorCounterparty   Rule = "anchor_counterparty"
	RuleAnchorNoMember       Rule = "anchor_no_member"
	RuleAnchorFirstRow       Rule = "anchor_first_row"
	RuleOtherCounterparty    Rule = "other_counterparty"
	RuleAccountSet           Rule = "account_set"
	RuleLineDirection        Rule = "line_direction"
	RuleBalance              Rule = "balance"
	RuleCurrency             Rule = "currency"
	RuleCodeSet              Rule = "code_set"
	RuleAnalyticOnlyWithCode Rule = "analytic_only_with_code"
)

// Violation is one failed check on a document.
type Violation struct {
	Rule     Rule
	Severity Severity
	Message  string
}

// Correction is one automatic fix applied to a row.
type Correction struct {
	// Row is the original Index of the corrected row.
	Row int

	// Field is the header of the corrected column.
	Field string

	// Value is the new amount.
	Value float64

	Message string
}

// Deletion is a row found empty after the checks.
type Deletion struct {
	// Row is the original Index of the row.
	Row int

	// Account is the general account of the row, for the log.
	Account string
}

// =============================================================================
// RESULT
// =============================================================================

// Result holds everything a validator found on one document.
type Result struct {
	Document    string
	Violations  []Violation
	Corrections []Correction
	Deletions   []Deletion

	// CreditNote is true when the anchor is on the debit side (purchases).
	CreditNote bool
}

// KO reports whether the document has at least one blocking violation.
func (r Result) KO() bool {
	for _, v := range r.Violations {
		if v.Severity == Blocking {
			return true
		}
	}
	return false
}

// Passed reports whether the document has no violation at all.
func (r Result) Passed() bool {
	return len(r.Violations) == 0
}

// Validator checks a single document.
type Validator interface {
	Validate(doc ledger.Document) Result
}

// New returns the validator for a ledger kind.
func New(kind ledger.Kind, layout ledger.Layout) Validator {
	if kind == ledger.KindSales {
		return NewSalesValidator(layout)
	}
	return NewPurchaseValidator(layout)
}

// =============================================================================
// HELPERS
// =============================================================================

// recorder appends violations with a severity policy.
type recorder struct {
	res      *Result
	severity func(Rule) Severity
}

func (rec recorder) add(rule Rule, msg string) {
	rec.res.Violations = append(rec.res.Violations, Violation{
		Rule:     rule,
		Severity: rec.severity(rule),
		Message:  msg,
	})
}

// all reports whether pred holds for every row.
func all(rows []*ledger.Row, pred func(*ledger.Row) bool) bool {
	for _, r := range rows {
		if !pred(r) {
			return false
		}
	}
	return true
}

// filter returns the rows for which pred holds.
func filter(rows []*ledger.Row, pred func(*ledger.Row) bool) []*ledger.Row {
	var out []*ledger.Row
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// distinct returns the distinct values of a column in first-seen order.
func distinct(rows []*ledger.Row, column string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		v := r.Get(column)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// emptyRows lists the rows with zero debit and credit that are not on the
// anchor account.
func emptyRows(doc ledger.Document, layout ledger.Layout) []Deletion {
	var out []Deletion
	for _, r := range doc.Rows {
		if r.Debit == 0 && r.Credit == 0 && r.Get(layout.Account) != layout.AnchorAccount {
			out = append(out, Deletion{Row: r.Index, Account: r.Get(layout.Account)})
		}
	}
	return out
}
