package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ventes.xlsx", "achats.CSV", "notes.txt", "~$ventes.xlsx"} {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.xlsx"), 0o755))

	files, err := NewFileManager(dir, "", "", "").DiscoverInputFiles()

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "achats.CSV"),
		filepath.Join(dir, "ventes.xlsx"),
	}, files)
}

func TestArchiveInputFile(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "in"), filepath.Join(root, "out"),
		filepath.Join(root, "archive"), filepath.Join(root, "logs"))
	require.NoError(t, fm.EnsureDirectories())
	src := filepath.Join(fm.InputDir, "achats.xlsx")
	touch(t, src)

	dst, err := fm.ArchiveInputFile(src)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "archive", "achats.xlsx"), dst)
	assert.FileExists(t, dst)
	assert.False(t, FileExists(src))
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{original}_corrige_{uuid}", "/in/achats mars.xlsx", nil)
	assert.Regexp(t, regexp.MustCompile(`^achats mars_corrige_[0-9a-f-]{36}\.xlsx$`), name)

	name = GenerateOutputFileName("{kind}-{original}.xlsx", "ventes.csv", map[string]string{"kind": "sales"})
	assert.Equal(t, "sales-ventes.xlsx", name)
}

func TestWriteCheckLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteCheckLog(CheckLog{
		InputFile:  "in/achats.xlsx",
		OutputFile: "out/achats_corrige.xlsx",
		Ledger:     "achats",
		Lines:      []string{"✅ Achat 01-01 : OK", "\n📋 Contrôle terminé : toutes les écritures sont conformes ✅"},
	}, dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "achats_corrige.log"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ledger:    achats")
	assert.Contains(t, string(data), "✅ Achat 01-01 : OK\n\n📋 Contrôle terminé")
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Now()

	path, err := WriteSummaryLog(ProcessingSummary{
		RunID:          "run-1",
		StartTime:      start,
		EndTime:        start.Add(time.Second),
		TotalFiles:     2,
		FilesWithKO:    1,
		ProcessedFiles: []ProcessedFileInfo{{InputFile: "a.xlsx", Ledger: "achats", Failing: []string{"01-02", "01-07"}}},
		FailedFilesList: []FailedFileInfo{{InputFile: "b.xlsx", ErrorMessage: "missing columns: Code"}},
	}, dir)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Run ID:         run-1")
	assert.Contains(t, string(data), "KO:           01-02, 01-07")
	assert.Contains(t, string(data), "Error: missing columns: Code")
}
