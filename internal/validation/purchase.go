package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PURCHASE VALIDATOR
// =============================================================================
//
// A purchase document is one supplier invoice (or credit note) booked in the
// "AC" journal:
//
//   | Compte Généraux | Compte Tiers | Débit(€) | Crédit (€) | Code |
//   |-----------------|--------------|----------|------------|------|
//   | 401000          | 401DUPONT    | 0        | 120.00     | G    |  anchor
//   | 604000          |              | 100.00   | 0          | G    |  charge
//   | 445660          |              | 20.00    | 0          | G    |  VAT
//   | 604000          |              | 100.00   | 0          | A    |  analytic
//
// POLICY:
//   Only an invalid anchor counterparty blocks the document. Every other rule
//   is informational. This differs from sales on purpose and is kept until
//   the accounting team decides otherwise.
//
// =============================================================================

var (
	purchaseDocNumber = regexp.MustCompile(`^(0[1-9]|1[0-2])-\d+$`)
	purchaseDate      = regexp.MustCompile(`^\d{2}/\d{2}/2025$`)
)

// purchaseJournal is the journal code of purchase entries.
const purchaseJournal = "AC"

// allowedPurchaseAccounts are the accounts a non-anchor purchase row may use.
var allowedPurchaseAccounts = map[string]bool{
	"604110":          true,
	"604000":          true,
	"604900":          true,
	ledger.VATAccount: true,
}

// PurchaseBlockingRules lists the rules that fail a purchase document.
var PurchaseBlockingRules = map[Rule]bool{
	RuleAnchorCounterparty: true,
}

// PurchaseValidator checks purchase documents.
type PurchaseValidator struct {
	layout ledger.Layout
}

// NewPurchaseValidator creates a PurchaseValidator for a layout.
func NewPurchaseValidator(layout ledger.Layout) *PurchaseValidator {
	return &PurchaseValidator{layout: layout}
}

func purchaseSeverity(rule Rule) Severity {
	if PurchaseBlockingRules[rule] {
		return Blocking
	}
	return Informational
}

// Validate implements Validator. It may set the debit or credit of the
// anchor row when the anchor is empty and the other rows determine it.
func (v *PurchaseValidator) Validate(doc ledger.Document) Result {
	res := Result{Document: doc.Number}
	v.check(doc, &res)
	res.Deletions = emptyRows(doc, v.layout)
	return res
}

func (v *PurchaseValidator) check(doc ledger.Document, res *Result) {
	lay := v.layout
	rec := recorder{res: res, severity: purchaseSeverity}
	rows := doc.Rows

	if !all(rows, func(r *ledger.Row) bool { return r.Get(lay.Journal) == purchaseJournal }) {
		rec.add(RuleJournalCode, "Code journal différent de AC")
	}
	if !all(rows, func(r *ledger.Row) bool { return purchaseDate.MatchString(r.Get(lay.InvoiceDate)) }) {
		rec.add(RuleInvoiceDateFormat, "Date Facture hors format JJ/MM/2025")
	}
	if !purchaseDocNumber.MatchString(doc.Number) {
		rec.add(RuleDocNumberFormat, "Format n° de pièce invalide")
	}
	if len(distinct(rows, lay.Label)) > 1 || len(distinct(rows, lay.Concierge)) > 1 {
		rec.add(RuleLabelUnique, "Libelle ou Concierge non identiques")
	}

	anchors := doc.Anchors(lay.Account, lay.AnchorAccount)
	switch {
	case len(anchors) == 0:
		rec.add(RuleAnchorMissing, "Manque ligne 401000")
		return
	case len(anchors) > 1:
		rec.add(RuleAnchorMultiple, "Plusieurs lignes 401000")
		return
	}
	anchor := anchors[0]

	isAnchor := func(r *ledger.Row) bool { return r.Get(lay.Account) == lay.AnchorAccount }
	nonAnalytic := func(r *ledger.Row) bool { return r.Get(lay.Code) != ledger.AnalyticCode }
	others := filter(rows, func(r *ledger.Row) bool { return !isAnchor(r) })
	charges := filter(others, nonAnalytic)

	sumDebit := sumOf(charges, debitOf)
	sumCredit := sumOf(charges, creditOf)

	if anchor.Debit == 0 && anchor.Credit == 0 {
		switch {
		case sumCredit.IsPositive() && sumDebit.IsZero():
			anchor.Debit = sumCredit.InexactFloat64()
			res.Corrections = append(res.Corrections, Correction{
				Row:     anchor.Index,
				Field:   lay.Debit,
				Value:   anchor.Debit,
				Message: fmt.Sprintf("Correction automatique : Débit 401000 mis à %.2f", anchor.Debit),
			})
		case sumDebit.IsPositive() && sumCredit.IsZero():
			anchor.Credit = sumDebit.InexactFloat64()
			res.Corrections = append(res.Corrections, Correction{
				Row:     anchor.Index,
				Field:   lay.Credit,
				Value:   anchor.Credit,
				Message: fmt.Sprintf("Correction automatique : Crédit 401000 mis à %.2f", anchor.Credit),
			})
		default:
			rec.add(RuleAnchorEmpty, "Ligne 401000 vide et incohérente")
		}
	}

	invoice := anchor.Debit == 0 && anchor.Credit > 0
	creditNote := anchor.Credit == 0 && anchor.Debit > 0
	res.CreditNote = creditNote

	if !invoice && !creditNote {
		rec.add(RuleAnchorDirection, "Ligne 401000 : doit être (Débit 0 / Crédit >0) ou (Crédit 0 / Débit >0)")
	}

	if !strings.HasPrefix(anchor.Get(lay.Counterparty), "401") {
		rec.add(RuleAnchorCounterparty, "Ligne 401000 : Compte Tiers invalide (doit commencer par 401)")
	}

	if !all(others, func(r *ledger.Row) bool { return strings.TrimSpace(r.Get(lay.Counterparty)) == "" }) {
		rec.add(RuleOtherCounterparty, "Autres lignes : Compte Tiers doit être vide")
	}
	if !all(others, func(r *ledger.Row) bool { return allowedPurchaseAccounts[r.Get(lay.Account)] }) {
		rec.add(RuleAccountSet, "Comptes Généraux invalides")
	}

	switch {
	case invoice:
		if !all(charges, func(r *ledger.Row) bool { return r.Debit > 0 }) {
			rec.add(RuleLineDirection, "Facture : Débit <= 0 sur lignes de charge")
		}
		if !all(charges, func(r *ledger.Row) bool { return r.Credit == 0 }) {
			rec.add(RuleLineDirection, "Facture : Crédit non nul")
		}
	case creditNote:
		if !all(charges, func(r *ledger.Row) bool { return r.Credit > 0 }) {
			rec.add(RuleLineDirection, "Avoir : Crédit <= 0")
		}
		if !all(charges, func(r *ledger.Row) bool { return r.Debit == 0 }) {
			rec.add(RuleLineDirection, "Avoir : Débit non nul")
		}
	}

	general := filter(rows, nonAnalytic)
	if invoice && !balanced(sumOf(general, debitOf), anchor.Credit) {
		rec.add(RuleBalance, "Somme Débit ≠ Crédit 401000")
	}
	if creditNote && !balanced(sumOf(general, creditOf), anchor.Debit) {
		rec.add(RuleBalance, "Somme Crédit ≠ Débit 401000")
	}
}

// =============================================================================
// AMOUNT HELPERS
// =============================================================================

func debitOf(r *ledger.Row) float64  { return r.Debit }
func creditOf(r *ledger.Row) float64 { return r.Credit }

// sumOf adds an amount over rows without accumulating float error.
func sumOf(rows []*ledger.Row, amount func(*ledger.Row) float64) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(decimal.NewFromFloat(amount(r)))
	}
	return total
}

// balanced reports whether total and expected agree to the cent: their
// difference, rounded to 2 decimals, is exactly zero.
func balanced(total decimal.Decimal, expected float64) bool {
	return total.Sub(decimal.NewFromFloat(expected)).Round(2).IsZero()
}
