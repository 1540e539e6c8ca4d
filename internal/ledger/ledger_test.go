package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchaseLedger(t *testing.T, rows ...[]string) *Ledger {
	t.Helper()
	l := New(KindPurchases, PurchaseLayout(), PurchaseLayout().Columns)
	for _, r := range rows {
		l.Append(r)
	}
	return l
}

func TestGroupPreservesFirstAppearanceOrder(t *testing.T) {
	l := New(KindPurchases, PurchaseLayout(), []string{"n° de piece", "Compte Généraux"})
	l.Append([]string{"02-01", "401000"})
	l.Append([]string{"01-05", "401000"})
	l.Append([]string{"02-01", "604000"})
	l.Append([]string{"01-05", "445660"})

	docs := Group(l.Rows, "n° de piece")

	require.Len(t, docs, 2)
	assert.Equal(t, "02-01", docs[0].Number)
	assert.Equal(t, "01-05", docs[1].Number)
	assert.Equal(t, []int{0, 2}, []int{docs[0].Rows[0].Index, docs[0].Rows[1].Index})
	assert.Equal(t, []int{1, 3}, []int{docs[1].Rows[0].Index, docs[1].Rows[1].Index})
}

func TestGroupSortsRowsByIndex(t *testing.T) {
	a, b, c := NewRow(5), NewRow(1), NewRow(3)
	for _, r := range []*Row{a, b, c} {
		r.Set("k", "X")
	}

	docs := Group([]*Row{a, b, c}, "k")

	require.Len(t, docs, 1)
	assert.Equal(t, 1, docs[0].Rows[0].Index)
	assert.Equal(t, 3, docs[0].Rows[1].Index)
	assert.Equal(t, 5, docs[0].Rows[2].Index)
}

func TestDocumentAnchors(t *testing.T) {
	l := New(KindPurchases, PurchaseLayout(), []string{"Compte Généraux"})
	l.Append([]string{"401000"})
	l.Append([]string{"604000"})

	doc := Group(l.Rows, "missing")[0]

	assert.Len(t, doc.Anchors("Compte Généraux", PayableAccount), 1)
	assert.Empty(t, doc.Anchors("Compte Généraux", ReceivableAccount))
}

func TestCloneIsIndependent(t *testing.T) {
	l := purchaseLedger(t, []string{"AC", "01/01/2025", "401000"})
	l.Rows[0].Credit = 10

	c := l.Clone()
	c.Rows[0].Set("Code journal", "VE")
	c.Rows[0].Credit = 99
	c.Headers[0] = "changed"

	assert.Equal(t, "AC", l.Rows[0].Get("Code journal"))
	assert.Equal(t, 10.0, l.Rows[0].Credit)
	assert.Equal(t, "Code journal", l.Headers[0])
}

func TestDropColumnAndRows(t *testing.T) {
	l := purchaseLedger(t,
		[]string{"AC", "", "401000"},
		[]string{"AC", "", "604000"},
		[]string{"AC", "", "445660"},
	)

	assert.True(t, l.DropColumn("Concierge"))
	assert.False(t, l.DropColumn("Concierge"))
	assert.False(t, l.HasColumn("Concierge"))
	_, present := l.Rows[0].Cells["Concierge"]
	assert.False(t, present)

	removed := l.DropRows(map[int]bool{1: true})
	assert.Equal(t, 1, removed)
	require.Len(t, l.Rows, 2)
	assert.Equal(t, 0, l.Rows[0].Index)
	assert.Equal(t, 2, l.Rows[1].Index)
}

func TestStampWorkingOrder(t *testing.T) {
	l := New(KindSales, SalesLayout(), SalesLayout().Columns)
	l.Append(nil)
	l.Append(nil)

	l.StampWorkingOrder()

	assert.True(t, l.HasColumn(WorkingColumn))
	assert.Equal(t, "1", l.Rows[1].Get(WorkingColumn))
}

func TestWithEditsPurchasesMatchesAnchor(t *testing.T) {
	l := purchaseLedger(t,
		[]string{"AC", "", "401000", "", "", "", "01-01"},
		[]string{"AC", "", "604000", "", "", "", "01-01"},
	)
	credit := 120.5

	out, n, err := l.WithEdits([]Edit{{
		Document: "01-01",
		Cells:    map[string]string{"Compte Tiers": "401DUPONT"},
		Credit:   &credit,
	}})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "401DUPONT", out.Rows[0].Get("Compte Tiers"))
	assert.Equal(t, 120.5, out.Rows[0].Credit)
	assert.Equal(t, "120.5", out.Rows[0].Get("Crédit (€)"))
	assert.Equal(t, "", out.Rows[1].Get("Compte Tiers"))
	assert.Equal(t, "", l.Rows[0].Get("Compte Tiers"), "input snapshot must not change")
}

func TestWithEditsSalesMatchesRow(t *testing.T) {
	l := New(KindSales, SalesLayout(), SalesLayout().Columns)
	l.Append(nil)
	l.Append(nil)
	row := 1

	out, n, err := l.WithEdits([]Edit{{Row: &row, Cells: map[string]string{"Compte tiers": "411X"}}})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "411X", out.Rows[1].Get("Compte tiers"))
}

func TestWithEditsErrors(t *testing.T) {
	l := purchaseLedger(t, []string{"AC", "", "401000", "", "", "", "01-01"})

	_, _, err := l.WithEdits([]Edit{{Document: "09-09"}})
	assert.ErrorContains(t, err, "matches no row")

	_, _, err = l.WithEdits([]Edit{{Document: "01-01", Cells: map[string]string{"Nope": "x"}}})
	assert.ErrorContains(t, err, "unknown column")
}

func TestLoadEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edits.yaml")
	content := "edits:\n  - document: \"01-04\"\n    cells:\n      \"Compte Tiers\": \"401A\"\n    debit: 12.5\n  - row: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	edits, err := LoadEdits(path)

	require.NoError(t, err)
	require.Len(t, edits, 2)
	assert.Equal(t, "01-04", edits[0].Document)
	assert.Equal(t, 12.5, *edits[0].Debit)
	assert.Equal(t, 3, *edits[1].Row)
}

func TestSyncAmounts(t *testing.T) {
	l := purchaseLedger(t, []string{"AC", "", "401000", "", "", "", "01-01", "", "abc"})
	l.Rows[0].Credit = 100.5

	l.SyncAmounts()

	assert.Equal(t, "0", l.Rows[0].Get("Débit(€)"))
	assert.Equal(t, "100.5", l.Rows[0].Get("Crédit (€)"))
}

func TestFromTablePurchases(t *testing.T) {
	header := append([]string{}, PurchaseLayout().Columns...)
	header[0], header[1] = header[1], header[0]
	cells := [][]string{
		{"JOURNAL DES ACHATS"},
		header,
		{"15/03/2025", " AC ", "401000"},
		{"", "", ""},
		{"15/03/2025", "AC", "604000"},
	}

	l, err := FromTable(KindPurchases, cells, 1)

	require.NoError(t, err)
	require.Len(t, l.Rows, 2)
	assert.Equal(t, "Date Facture", l.Headers[0])
	assert.Equal(t, "AC", l.Rows[0].Get("Code journal"))
	assert.Equal(t, 1, l.Rows[1].Index)
	assert.Equal(t, "604000", l.Rows[1].Get("Compte Généraux"))
}

func TestFromTablePurchasesMissingColumn(t *testing.T) {
	_, err := FromTable(KindPurchases, [][]string{{"Code journal", "Libelle"}}, 0)

	assert.ErrorContains(t, err, "missing columns")
	assert.ErrorContains(t, err, "n° de piece")
}

func TestFromTableWithoutConcierge(t *testing.T) {
	purchases := without(PurchaseLayout().Columns, "Concierge")
	l, err := FromTable(KindPurchases, [][]string{purchases, {"AC", "15/03/2025", "401000"}}, 0)
	require.NoError(t, err)
	assert.False(t, l.HasColumn("Concierge"))
	assert.Equal(t, "", l.Rows[0].Get("Concierge"))

	sales := without(SalesLayout().Columns, "Concierge")
	l, err = FromTable(KindSales, [][]string{sales, {"VE", "05/03/2025", "411000", "C1", "Client", "F1"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, sales, l.Headers)
	assert.Equal(t, "F1", l.Rows[0].Get("Numéro de facture"))

	sales[0] = "Journal"
	_, err = FromTable(KindSales, [][]string{sales}, 0)
	assert.ErrorContains(t, err, "expected 12 columns, found 11")
}

func without(cols []string, name string) []string {
	var out []string
	for _, c := range cols {
		if c != name {
			out = append(out, c)
		}
	}
	return out
}

func TestFromTableSalesIsPositional(t *testing.T) {
	header := make([]string, 13)
	header[12] = "Commentaire"
	cells := [][]string{
		header,
		{"VE", "05/03/2025", "411000", "C1", "", "Client", "F1", "10", "0", "€", "", "G", "note"},
	}

	l, err := FromTable(KindSales, cells, 0)

	require.NoError(t, err)
	assert.Equal(t, append(SalesLayout().Columns, "Commentaire"), l.Headers)
	assert.Equal(t, "F1", l.Rows[0].Get("Numéro de facture"))
	assert.Equal(t, "note", l.Rows[0].Get("Commentaire"))
}

func TestFromTableErrors(t *testing.T) {
	_, err := FromTable(KindSales, [][]string{{"a", "b"}}, 0)
	assert.ErrorContains(t, err, "expected 12 columns")

	_, err = FromTable(KindSales, nil, 1)
	assert.ErrorContains(t, err, "header row 2 not found")

	_, err = FromTable("stock", [][]string{{"a"}}, 0)
	assert.ErrorContains(t, err, "unknown ledger kind")
}
