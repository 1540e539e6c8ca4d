package report

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ginjaninja78/ledger-checker/internal/currency"
	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/ginjaninja78/ledger-checker/internal/normalizer"
	"github.com/ginjaninja78/ledger-checker/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchases(rows int) *ledger.Ledger {
	lay := ledger.PurchaseLayout()
	l := ledger.New(ledger.KindPurchases, lay, lay.Columns)
	for i := 0; i < rows; i++ {
		l.Append([]string{"AC", "15/03/2025", "604000"})
	}
	return l
}

func TestBuildPurchaseReport(t *testing.T) {
	b := NewBuilder(ledger.KindPurchases)
	b.Normalized(normalizer.Stats{FilledDocNumbers: 2})
	b.Document(validation.Result{
		Document:    "03-01",
		Corrections: []validation.Correction{{Message: "Correction automatique : Crédit 401000 mis à 100.00"}},
		Violations: []validation.Violation{
			{Rule: validation.RuleAccountSet, Severity: validation.Informational, Message: "Comptes Généraux invalides"},
		},
	})
	b.Document(validation.Result{
		Document:   "03-02",
		CreditNote: true,
		Violations: []validation.Violation{
			{Rule: validation.RuleAnchorCounterparty, Severity: validation.Blocking, Message: "Ligne 401000 : Compte Tiers invalide (doit commencer par 401)"},
		},
		Deletions: []validation.Deletion{{Row: 2, Account: "604000"}},
	})

	rep := b.Build(purchases(3))

	assert.Equal(t, []string{
		"✅ Les n° de pièce manquants ont été remplis automatiquement.",
		"✅ La colonne Compte Tiers ne comprend plus de 445660 mal placés.",
		"✅ Achat 03-01 : OK",
		"   🛠️  Correction automatique : Crédit 401000 mis à 100.00",
		"   🟢 Comptes Généraux invalides",
		"❌ Achat 03-02 : KO",
		"   🔄 Achat 03-02 détecté comme AVOIR",
		"   🔻 Ligne 401000 : Compte Tiers invalide (doit commencer par 401)",
		"   🗑️  Suppression ligne vide (index 2, Compte 604000)",
		"\n✅ 1 ligne(s) vide(s) supprimée(s).",
		"\n📋 Contrôle terminé : 1 achat(s) non conforme(s).",
	}, rep.Lines)
	assert.Equal(t, []string{"03-02"}, rep.Failing)
	assert.Equal(t, 1, rep.FailingCount)
	assert.False(t, rep.OK())
	assert.Equal(t, 1, rep.Deleted)
	assert.Len(t, rep.Ledger.Rows, 2)
	assert.True(t, rep.Ledger.HasColumn("Concierge"), "kept while documents fail")
	assert.Len(t, rep.Results, 2)
}

func TestBuildDropsConciergeWhenAllPass(t *testing.T) {
	lay := ledger.SalesLayout()
	l := ledger.New(ledger.KindSales, lay, lay.Columns)
	l.Append(nil)
	l.StampWorkingOrder()

	b := NewBuilder(ledger.KindSales)
	b.Document(validation.Result{Document: "F1"})
	rep := b.Build(l)

	assert.Equal(t, []string{
		"✅ Facture F1 : OK",
		"✅ Colonne Concierge supprimée avant export.",
		"\n📋 Contrôle terminé : toutes les écritures sont conformes ✅",
	}, rep.Lines)
	assert.True(t, rep.OK())
	assert.False(t, rep.Ledger.HasColumn("Concierge"))
	assert.False(t, rep.Ledger.HasColumn(ledger.WorkingColumn))
	assert.NotContains(t, rep.Ledger.Rows[0].Cells, ledger.WorkingColumn)
}

func TestBuildSalesFailureSummary(t *testing.T) {
	lay := ledger.SalesLayout()
	b := NewBuilder(ledger.KindSales)
	b.Document(validation.Result{
		Document:   "F2",
		Violations: []validation.Violation{{Severity: validation.Blocking, Message: "Code journal ≠ VE"}},
	})

	rep := b.Build(ledger.New(ledger.KindSales, lay, lay.Columns))

	require.NotEmpty(t, rep.Lines)
	assert.Equal(t, "❌ Facture F2 : KO", rep.Lines[0])
	assert.Equal(t, "\n📋 Contrôle terminé : 1 facture(s) KO.", rep.Lines[len(rep.Lines)-1])
	assert.True(t, rep.Ledger.HasColumn("Concierge"))
}

func TestConversionLines(t *testing.T) {
	b := NewBuilder(ledger.KindSales)
	b.Conversions([]currency.Event{
		{Document: "F1", Symbol: "$", Code: "USD", Rate: 0.9263},
		{Document: "F2", Symbol: "§", Err: fmt.Errorf("%w '§'", currency.ErrUnknownSymbol)},
		{Document: "F3", Symbol: "£", Code: "GBP", Err: errors.New("timeout")},
	})

	assert.Equal(t, []string{
		"💱 Conversion en EUR appliquée pour la facture F1 (taux : 0.9263)",
		"❌ Facture F2 : symbole devise inconnu '§'",
		"❌ Erreur conversion facture F3 : timeout",
	}, b.lines)
}

func TestCoercedAmountsWarning(t *testing.T) {
	b := NewBuilder(ledger.KindSales)
	b.Normalized(normalizer.Stats{CoercedAmounts: 3})

	assert.Equal(t, []string{"⚠️ 3 montant(s) illisible(s) lu(s) comme 0.00"}, b.lines)
}
