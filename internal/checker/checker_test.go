package checker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ginjaninja78/ledger-checker/internal/currency"
	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rateFunc func(from string) (float64, error)

func (f rateFunc) Rate(_ context.Context, _ time.Time, from, _ string) (float64, error) {
	return f(from)
}

func fixedRate(r float64) currency.RateSource {
	return rateFunc(func(string) (float64, error) { return r, nil })
}

func rawPurchases() *ledger.Ledger {
	lay := ledger.PurchaseLayout()
	l := ledger.New(ledger.KindPurchases, lay, lay.Columns)
	for _, r := range [][]string{
		{"ac", "15/03/2025", "401000", "401dupont", "edf", "jean", "", "", "", "", "g"},
		{"AC", "15/03/2025", "604000", "", "EDF", "JEAN", "", "60,00", "", "", "G"},
		{"AC", "15/03/2025", "445660", "445660", "EDF", "JEAN", "", "40", "", "", "G"},
		{"AC", "15/03/2025", "604900", "", "EDF", "JEAN", "", "0", "0", "", "G"},
		{"AC", "16/03/2025", "401000", "FOURN", "GDF", "PAUL", "02-03", "", "50", "", "G"},
		{"AC", "16/03/2025", "604000", "", "GDF", "PAUL", "", "50", "", "", "G"},
	} {
		l.Append(r)
	}
	return l
}

func rawSales(firstCurrency string) *ledger.Ledger {
	lay := ledger.SalesLayout()
	l := ledger.New(ledger.KindSales, lay, lay.Columns)
	for _, r := range [][]string{
		{"VE", "05/03/2025", "411000", "C1", "ANNE", "Client, SA", "F1", "200", "0", firstCurrency, "", "G"},
		{"VE", "05/03/2025", "706000", "", "ANNE", "Client, SA", "F1", "0", "200", firstCurrency, "", "G"},
		{"VE", "06/03/2025", "411000", "C2", "ANNE", "Autre", "F2", "10", "", "€", "", "G"},
		{"VE", "06/03/2025", "706000", "", "ANNE", "Autre", "F2", "", "10", "€", "", "G"},
	} {
		l.Append(r)
	}
	return l
}

func TestRunPurchases(t *testing.T) {
	in := rawPurchases()

	rep, err := New(fixedRate(1)).Run(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, []string{"02-03"}, rep.Failing)
	assert.Equal(t, 1, rep.FailingCount)
	assert.Equal(t, 1, rep.Deleted)
	assert.Contains(t, rep.Lines, "✅ Achat 01-01 : OK")
	assert.Contains(t, rep.Lines, "   🛠️  Correction automatique : Crédit 401000 mis à 100.00")
	assert.Contains(t, rep.Lines, "   🗑️  Suppression ligne vide (index 3, Compte 604900)")
	assert.Contains(t, rep.Lines, "❌ Achat 02-03 : KO")
	assert.Equal(t, "\n📋 Contrôle terminé : 1 achat(s) non conforme(s).", rep.Lines[len(rep.Lines)-1])

	out := rep.Ledger
	lay := out.Layout
	require.Len(t, out.Rows, 5)
	assert.Equal(t, "01-01", out.Rows[0].Get(lay.DocNumber))
	assert.Equal(t, "401DUPONT", out.Rows[0].Get(lay.Counterparty))
	assert.Equal(t, 100.0, out.Rows[0].Credit)
	assert.Equal(t, "", out.Rows[2].Get(lay.Counterparty), "misplaced VAT counterparty cleared")
	assert.Equal(t, "02-03", out.Rows[4].Get(lay.DocNumber))
	assert.True(t, out.HasColumn(lay.Concierge))

	assert.Equal(t, "", in.Rows[0].Get(lay.DocNumber), "input must not change")
	assert.Equal(t, 0.0, in.Rows[0].Credit)
	assert.Len(t, in.Rows, 6)
}

func TestRunPurchasesIsStableOnItsOutput(t *testing.T) {
	c := New(fixedRate(1))
	first, err := c.Run(context.Background(), rawPurchases())
	require.NoError(t, err)

	second, err := c.Run(context.Background(), first.Ledger)
	require.NoError(t, err)

	assert.Equal(t, first.Failing, second.Failing)
	assert.Zero(t, second.Deleted)
	assert.NotContains(t, second.Lines, "   🛠️  Correction automatique : Crédit 401000 mis à 100.00")
}

func TestRunPurchasesRereadsCleanExport(t *testing.T) {
	in := rawPurchases()
	in.Rows = in.Rows[:4]

	c := New(fixedRate(1))
	first, err := c.Run(context.Background(), in)
	require.NoError(t, err)
	require.True(t, first.OK())
	require.False(t, first.Ledger.HasColumn(in.Layout.Concierge))

	out := first.Ledger
	cells := [][]string{out.Headers}
	for _, r := range out.Rows {
		row := make([]string, len(out.Headers))
		for i, h := range out.Headers {
			row[i] = r.Get(h)
		}
		cells = append(cells, row)
	}
	reread, err := ledger.FromTable(ledger.KindPurchases, cells, 0)
	require.NoError(t, err)

	second, err := c.Run(context.Background(), reread)
	require.NoError(t, err)
	assert.True(t, second.OK())
	assert.Contains(t, second.Lines, "✅ Achat 01-01 : OK")
	assert.NotContains(t, second.Lines, "   🛠️  Correction automatique : Crédit 401000 mis à 100.00")
}

func TestApplyEditsMatchesFilledDocumentNumbers(t *testing.T) {
	in := rawPurchases()
	lay := in.Layout
	in.Rows[0].Set(lay.Journal, "XX")

	c := New(fixedRate(1))
	first, err := c.Run(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, []string{"01-01", "02-03"}, first.Failing)

	edits := []ledger.Edit{{Document: "01-01", Cells: map[string]string{lay.Journal: "AC"}}}

	_, _, err = in.WithEdits(edits)
	assert.ErrorContains(t, err, "edit 1 matches no row", "raw rows carry no generated number")

	edited, applied, err := ApplyEdits(in, edits)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, "AC", edited.Rows[0].Get(lay.Journal))
	assert.Equal(t, "60,00", edited.Rows[1].Get(lay.Debit), "amount text is left for the run")
	assert.Equal(t, "XX", in.Rows[0].Get(lay.Journal), "input must not change")

	second, err := c.Run(context.Background(), edited)
	require.NoError(t, err)
	assert.Equal(t, []string{"02-03"}, second.Failing)
	assert.Contains(t, second.Lines, "✅ Achat 01-01 : OK")
}

func TestApplyEditsSalesMatchOnRow(t *testing.T) {
	in := rawSales("€")
	row := 2
	edited, applied, err := ApplyEdits(in, []ledger.Edit{{Row: &row, Cells: map[string]string{in.Layout.Concierge: "PAUL"}}})

	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, "PAUL", edited.Rows[2].Get(in.Layout.Concierge))

	_, _, err = ApplyEdits(nil, nil)
	assert.ErrorIs(t, err, ErrNilLedger)
}

func TestRunSalesConvertsAndPasses(t *testing.T) {
	var seen []string
	rates := rateFunc(func(from string) (float64, error) {
		seen = append(seen, from)
		return 0.5, nil
	})

	rep, err := New(rates).Run(context.Background(), rawSales("$"))

	require.NoError(t, err)
	assert.Equal(t, []string{"USD"}, seen)
	assert.True(t, rep.OK())
	assert.Equal(t, []string{
		"💱 Conversion en EUR appliquée pour la facture F1 (taux : 0.5)",
		"✅ Facture F1 : OK",
		"✅ Facture F2 : OK",
		"✅ Colonne Concierge supprimée avant export.",
		"\n📋 Contrôle terminé : toutes les écritures sont conformes ✅",
	}, rep.Lines)

	out := rep.Ledger
	assert.Equal(t, 100.0, out.Rows[0].Debit)
	assert.Equal(t, 100.0, out.Rows[1].Credit)
	assert.Equal(t, "€", out.Rows[0].Get(out.Layout.Currency))
	assert.Equal(t, "Client SA", out.Rows[0].Get(out.Layout.Client))
	assert.False(t, out.HasColumn(ledger.WorkingColumn))
	assert.False(t, out.HasColumn(out.Layout.Concierge))
}

func TestRunSalesRateFailureFailsDocument(t *testing.T) {
	rates := rateFunc(func(string) (float64, error) { return 0, currency.ErrRateMissing })

	rep, err := New(rates).Run(context.Background(), rawSales("$"))

	require.NoError(t, err)
	assert.Equal(t, []string{"F1"}, rep.Failing)
	assert.Contains(t, rep.Lines, "   🔻 Facture non en euro (valeurs : ['$'])")
	assert.Equal(t, 200.0, rep.Ledger.Rows[0].Debit)
	assert.True(t, rep.Ledger.HasColumn(rep.Ledger.Layout.Concierge))
	assert.False(t, rep.Ledger.HasColumn(ledger.WorkingColumn))
}

func TestRunCancelledDuringConversion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rates := rateFunc(func(string) (float64, error) {
		cancel()
		return 0, context.Canceled
	})

	_, err := New(rates).Run(ctx, rawSales("$"))

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunRejectsBadInput(t *testing.T) {
	_, err := New(nil).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilLedger)

	l := rawSales("€")
	l.Kind = "stock"
	_, err = New(nil).Run(context.Background(), l)
	assert.ErrorContains(t, err, "unknown ledger kind")
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden %d", 1)
	logger.Warn("kept %d", 2)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "kept 2")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}
