package ledger

import "slices"

// =============================================================================
// COLUMN LAYOUTS
// =============================================================================

// Layout maps the semantic fields used by the checks to spreadsheet headers.
// Fields that a layout does not carry are left empty.
type Layout struct {
	Journal      string
	InvoiceDate  string
	Account      string
	Counterparty string
	Label        string
	Concierge    string
	DocNumber    string
	Analytic     string
	Code         string
	Debit        string
	Credit       string

	// Currency and Client exist only in the sales layout.
	Currency string
	Client   string

	// AnchorAccount is the control account that anchors a document.
	AnchorAccount string

	// Positional, when set, renames the first len(Columns) headers of the
	// input to Columns regardless of what the spreadsheet header row says.
	Positional bool

	// Columns is the expected header list, in spreadsheet order.
	Columns []string

	// TextColumns are normalized as text before the checks run.
	TextColumns []string
}

// Clone returns a copy with independent slices.
func (l Layout) Clone() Layout {
	l.Columns = slices.Clone(l.Columns)
	l.TextColumns = slices.Clone(l.TextColumns)
	return l
}

// PurchaseLayout returns the column layout of the purchase journal export.
func PurchaseLayout() Layout {
	l := Layout{
		Journal:       "Code journal",
		InvoiceDate:   "Date Facture",
		Account:       "Compte Généraux",
		Counterparty:  "Compte Tiers",
		Label:         "Libelle",
		Concierge:     "Concierge",
		DocNumber:     "n° de piece",
		Analytic:      "Analytique",
		Code:          "Code",
		Debit:         "Débit(€)",
		Credit:        "Crédit (€)",
		AnchorAccount: PayableAccount,
	}
	l.Columns = []string{
		l.Journal, l.InvoiceDate, l.Account, l.Counterparty, l.Label,
		l.Concierge, l.DocNumber, l.Debit, l.Credit, l.Analytic, l.Code,
	}
	l.TextColumns = []string{
		l.Journal, l.InvoiceDate, l.Account, l.Counterparty, l.Label,
		l.Concierge, l.DocNumber, l.Analytic, l.Code,
	}
	return l
}

// SalesLayout returns the column layout of the sales journal export.
// Sales exports carry unreliable header labels, so columns are positional.
func SalesLayout() Layout {
	l := Layout{
		Journal:       "Code journal",
		InvoiceDate:   "Date de facture",
		Account:       "Compte général",
		Counterparty:  "Compte tiers",
		Concierge:     "Concierge",
		Client:        "Nom client + service",
		DocNumber:     "Numéro de facture",
		Debit:         "Débit",
		Credit:        "Crédit",
		Currency:      "Monnaie",
		Analytic:      "Analytique",
		Code:          "Code",
		AnchorAccount: ReceivableAccount,
		Positional:    true,
	}
	l.Columns = []string{
		l.Journal, l.InvoiceDate, l.Account, l.Counterparty, l.Concierge,
		l.Client, l.DocNumber, l.Debit, l.Credit, l.Currency, l.Analytic, l.Code,
	}
	l.TextColumns = []string{
		l.Journal, l.InvoiceDate, l.Account, l.Counterparty, l.Concierge,
		l.Client, l.DocNumber, l.Currency, l.Analytic, l.Code,
	}
	return l
}

// LayoutFor returns the default layout for a ledger kind.
func LayoutFor(kind Kind) Layout {
	if kind == KindSales {
		return SalesLayout()
	}
	return PurchaseLayout()
}
