package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/ledger-checker/internal/ledger"
)

// =============================================================================
// SALES VALIDATOR
// =============================================================================
//
// A sales document is one customer invoice booked in the "VE" journal. The
// receivable row (411000) must come first and carry the whole debit; every
// other row is a credit.
//
// Every violation blocks the document.
//
// =============================================================================

const (
	salesJournal = "VE"

	// NoMemberCounterparty is the placeholder counterparty the billing
	// export writes when the customer has no member account.
	NoMemberCounterparty = "411-NO MEMBER ACCOUNT"
)

// SalesValidator checks sales documents.
type SalesValidator struct {
	layout ledger.Layout
}

// NewSalesValidator creates a SalesValidator for a layout.
func NewSalesValidator(layout ledger.Layout) *SalesValidator {
	return &SalesValidator{layout: layout}
}

func salesSeverity(Rule) Severity { return Blocking }

// Validate implements Validator. Rows are never modified.
func (v *SalesValidator) Validate(doc ledger.Document) Result {
	res := Result{Document: doc.Number}
	rec := recorder{res: &res, severity: salesSeverity}
	lay := v.layout
	rows := doc.Rows

	if strings.TrimSpace(doc.Number) == "" {
		rec.add(RuleDocNumberMissing, "Numéro de facture manquant")
		return res
	}

	if !all(rows, func(r *ledger.Row) bool { return r.Get(lay.Journal) == salesJournal }) {
		rec.add(RuleJournalCode, "Code journal ≠ VE")
	}
	if len(distinct(rows, lay.InvoiceDate)) > 1 {
		rec.add(RuleInvoiceDateUnique, "Dates différentes dans une même facture")
	}

	currencies := distinct(rows, lay.Currency)
	if len(currencies) > 1 || (len(rows) > 0 && rows[0].Get(lay.Currency) != ledger.EuroSymbol) {
		rec.add(RuleCurrency, fmt.Sprintf("Facture non en euro (valeurs : %s)", quotedList(currencies)))
	}

	if len(rows) > 0 {
		if first := strings.TrimSpace(rows[0].Get(lay.Account)); first != lay.AnchorAccount {
			rec.add(RuleAnchorFirstRow, fmt.Sprintf("1ère ligne ≠ 411000 (valeur : %s)", first))
		}
	}

	if !all(rows, func(r *ledger.Row) bool {
		code := r.Get(lay.Code)
		return code == ledger.AnalyticCode || code == ledger.GeneralCode
	}) {
		rec.add(RuleCodeSet, "Code ≠ A ou G")
	}

	nonAnalytic := func(r *ledger.Row) bool { return r.Get(lay.Code) != ledger.AnalyticCode }
	if !all(filter(rows, nonAnalytic), func(r *ledger.Row) bool { return r.Get(lay.Analytic) == "" }) {
		rec.add(RuleAnalyticOnlyWithCode, "Analytique ne doit être rempli que si Code = A")
	}

	anchors := doc.Anchors(lay.Account, lay.AnchorAccount)
	for _, a := range anchors {
		if strings.TrimSpace(a.Get(lay.Counterparty)) == NoMemberCounterparty {
			rec.add(RuleAnchorNoMember, "Ligne 411000 avec compte tiers '411-NO MEMBER ACCOUNT'")
			break
		}
	}

	if len(anchors) != 1 {
		rec.add(RuleAnchorCount, "Nombre ≠ 1 de lignes 411000")
		return res
	}
	anchor := anchors[0]

	if anchor.Debit <= 0 {
		rec.add(RuleAnchorDirection, "Débit ligne 411000 ≤ 0")
	}
	if anchor.Credit != 0 {
		rec.add(RuleAnchorDirection, "Crédit ligne 411000 ≠ 0")
	}

	others := filter(rows, func(r *ledger.Row) bool {
		return strings.TrimSpace(r.Get(lay.Account)) != lay.AnchorAccount
	})
	if !all(others, func(r *ledger.Row) bool { return r.Debit == 0 }) {
		rec.add(RuleLineDirection, "Débit ≠ 0 sur lignes ≠ 411000")
	}
	if !all(others, func(r *ledger.Row) bool { return r.Credit > 0 }) {
		rec.add(RuleLineDirection, "Crédit ≤ 0 sur lignes ≠ 411000")
	}

	if !balanced(sumOf(filter(rows, nonAnalytic), creditOf), anchor.Debit) {
		rec.add(RuleBalance, "Somme crédits ≠ Débit 411000")
	}

	return res
}

// quotedList renders values the way the accounting team reads them in the
// log: ['$', '€'].
func quotedList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
