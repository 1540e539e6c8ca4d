package csvparser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/ledger-checker/internal/config"
	"github.com/ginjaninja78/ledger-checker/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func purchaseCSV() string {
	return "Journal des achats\n" +
		strings.Join(ledger.PurchaseLayout().Columns, ";") + "\n" +
		"AC;15/03/2025;401000;401DUPONT;EDF;JEAN;03-01;;120,50;;G\n" +
		"\n" +
		"AC;15/03/2025;604000;;EDF;JEAN;03-01;120,50;;;G\n"
}

func TestParseReaderUTF8(t *testing.T) {
	l, err := ParseReader(strings.NewReader(purchaseCSV()), ledger.KindPurchases,
		config.CSVSettings{Delimiter: ";"}, 1)

	require.NoError(t, err)
	require.Len(t, l.Rows, 2)
	assert.Equal(t, "120,50", l.Rows[0].Get("Crédit (€)"))
	assert.Equal(t, "604000", l.Rows[1].Get("Compte Généraux"))
}

func TestParseReaderWindows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String(purchaseCSV())
	require.NoError(t, err)

	l, err := ParseReader(bytes.NewReader([]byte(encoded)), ledger.KindPurchases,
		config.CSVSettings{Delimiter: ";", Encoding: "windows-1252"}, 1)

	require.NoError(t, err)
	assert.True(t, l.HasColumn("Crédit (€)"))
	assert.Equal(t, "n° de piece", l.Headers[6])
}

func TestParseFileLatin1(t *testing.T) {
	lay := ledger.SalesLayout()
	content := strings.Join(lay.Columns, ",") + "\n" +
		"VE,05/03/2025,411000,C1,,Société,F1,10,0,EUR,,G\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "ventes.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	l, err := Parse(path, ledger.KindSales, config.CSVSettings{Delimiter: ",", Encoding: "ISO-8859-1"}, 0)

	require.NoError(t, err)
	require.Len(t, l.Rows, 1)
	assert.Equal(t, "Société", l.Rows[0].Get(lay.Client))
}

func TestParseReaderErrors(t *testing.T) {
	_, err := ParseReader(strings.NewReader(""), ledger.KindSales, config.CSVSettings{}, 0)
	assert.ErrorContains(t, err, "empty")

	_, err = ParseReader(strings.NewReader("a"), ledger.KindSales, config.CSVSettings{Encoding: "EBCDIC"}, 0)
	assert.ErrorContains(t, err, "unsupported encoding")
}
