// =============================================================================
// Ledger Checker - Report Builder
// =============================================================================
//
// The report is the log an accountant reads after a run. It is an ordered
// list of lines:
//
//   ✅ Les n° de pièce manquants ont été remplis automatiquement.
//   ✅ Achat 03-01 : OK
//      🛠️  Correction automatique : Crédit 401000 mis à 100.00
//      🟢 Comptes Généraux invalides
//   ❌ Achat 03-02 : KO
//      🔻 Ligne 401000 : Compte Tiers invalide (doit commencer par 401)
//      🗑️  Suppression ligne vide (index 7, Compte 604000)
//
//   ✅ 1 ligne(s) vide(s) supprimée(s).
//
//   📋 Contrôle terminé : 1 achat(s) non conforme(s).
//
// Alongside the lines, Build returns the failing documents and the pruned
// ledger ready for export.
//
// =============================================================================

package report

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ginjaninja78/ledger-checker/internal/currency"
	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/ginjaninja78/ledger-checker/internal/normalizer"
	"github.com/ginjaninja78/ledger-checker/internal/validation"
)

// Report is the outcome of one checker run.
type Report struct {
	Kind ledger.Kind

	// Lines is the ordered log.
	Lines []string

	// Failing lists the KO document numbers in document order.
	Failing []string

	// FailingCount is len(Failing).
	FailingCount int

	// Deleted is the number of empty rows removed from Ledger.
	Deleted int

	// Results holds one validation result per document, in document order.
	Results []validation.Result

	// Ledger is the corrected, pruned table.
	Ledger *ledger.Ledger
}

// OK reports whether no document failed.
func (r Report) OK() bool {
	return r.FailingCount == 0
}

// Builder accumulates report lines in order.
type Builder struct {
	kind      ledger.Kind
	lines     []string
	failing   []string
	results   []validation.Result
	deletions map[int]bool
}

// NewBuilder creates a Builder for a ledger kind.
func NewBuilder(kind ledger.Kind) *Builder {
	return &Builder{kind: kind, deletions: make(map[int]bool)}
}

// documentLabel is the word used for a document in the log.
func (b *Builder) documentLabel() string {
	if b.kind == ledger.KindSales {
		return "Facture"
	}
	return "Achat"
}

// Normalized records what the normalizer repaired.
func (b *Builder) Normalized(stats normalizer.Stats) {
	if b.kind == ledger.KindPurchases {
		b.lines = append(b.lines,
			"✅ Les n° de pièce manquants ont été remplis automatiquement.",
			"✅ La colonne Compte Tiers ne comprend plus de 445660 mal placés.",
		)
	}
	if stats.CoercedAmounts > 0 {
		b.lines = append(b.lines,
			fmt.Sprintf("⚠️ %d montant(s) illisible(s) lu(s) comme 0.00", stats.CoercedAmounts))
	}
}

// Conversions records the outcome of the currency pass.
func (b *Builder) Conversions(events []currency.Event) {
	for _, ev := range events {
		switch {
		case ev.Converted():
			b.lines = append(b.lines, fmt.Sprintf("💱 Conversion en EUR appliquée pour la facture %s (taux : %s)",
				ev.Document, strconv.FormatFloat(ev.Rate, 'f', -1, 64)))
		case errors.Is(ev.Err, currency.ErrUnknownSymbol):
			b.lines = append(b.lines, fmt.Sprintf("❌ Facture %s : symbole devise inconnu '%s'", ev.Document, ev.Symbol))
		default:
			b.lines = append(b.lines, fmt.Sprintf("❌ Erreur conversion facture %s : %v", ev.Document, ev.Err))
		}
	}
}

// Document records one validated document.
func (b *Builder) Document(res validation.Result) {
	b.results = append(b.results, res)

	status, marker := "OK", "✅"
	if res.KO() {
		status, marker = "KO", "❌"
		b.failing = append(b.failing, res.Document)
	}
	b.lines = append(b.lines, fmt.Sprintf("%s %s %s : %s", marker, b.documentLabel(), res.Document, status))

	for _, c := range res.Corrections {
		b.lines = append(b.lines, "   🛠️  "+c.Message)
	}
	if res.CreditNote {
		b.lines = append(b.lines, fmt.Sprintf("   🔄 Achat %s détecté comme AVOIR", res.Document))
	}
	for _, v := range res.Violations {
		bullet := "🟢"
		if v.Severity == validation.Blocking {
			bullet = "🔻"
		}
		b.lines = append(b.lines, fmt.Sprintf("   %s %s", bullet, v.Message))
	}
	for _, d := range res.Deletions {
		b.lines = append(b.lines, fmt.Sprintf("   🗑️  Suppression ligne vide (index %d, Compte %s)", d.Row, d.Account))
		b.deletions[d.Row] = true
	}
}

// Build prunes l in place and closes the log.
//
// PRUNING:
//   1. Rows marked for deletion by any document are removed
//   2. The working order column is removed
//   3. The Concierge column is removed when no document failed
//
// Amount cells are rewritten from the checked amounts first.
func (b *Builder) Build(l *ledger.Ledger) Report {
	l.SyncAmounts()
	deleted := l.DropRows(b.deletions)
	if deleted > 0 {
		b.lines = append(b.lines, fmt.Sprintf("\n✅ %d ligne(s) vide(s) supprimée(s).", deleted))
	}

	l.DropColumn(ledger.WorkingColumn)

	if len(b.failing) == 0 && l.Layout.Concierge != "" && l.DropColumn(l.Layout.Concierge) {
		b.lines = append(b.lines, "✅ Colonne Concierge supprimée avant export.")
	}

	b.lines = append(b.lines, b.summary())

	return Report{
		Kind:         b.kind,
		Lines:        b.lines,
		Failing:      b.failing,
		FailingCount: len(b.failing),
		Deleted:      deleted,
		Results:      b.results,
		Ledger:       l,
	}
}

func (b *Builder) summary() string {
	n := len(b.failing)
	switch {
	case n == 0:
		return "\n📋 Contrôle terminé : toutes les écritures sont conformes ✅"
	case b.kind == ledger.KindSales:
		return fmt.Sprintf("\n📋 Contrôle terminé : %d facture(s) KO.", n)
	default:
		return fmt.Sprintf("\n📋 Contrôle terminé : %d achat(s) non conforme(s).", n)
	}
}
