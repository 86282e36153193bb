package extractor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_MissingFile(t *testing.T) {
	text, err := ExtractText(filepath.Join(t.TempDir(), "absent.pdf"))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a pdf"), 0o644))

	text, err := ExtractText(path)
	assert.Error(t, err)
	assert.Empty(t, text)
}

func TestAppendRecordSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jane", RecordFileName)

	first := Section{Title: SectionTitle(time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)), Content: "Diagnosis Migraine"}
	second := Section{Title: SectionTitle(time.Date(2026, 10, 9, 18, 5, 0, 0, time.UTC)), Content: "Prescribed Paracetamol"}

	require.NoError(t, AppendRecordSection(path, first))
	require.NoError(t, AppendRecordSection(path, second))

	sections, err := loadSections(path)
	require.NoError(t, err)
	assert.Equal(t, []Section{first, second}, sections)
	assert.Equal(t, "Extracted Medical Record (2026-10-01 09:00:00)", first.Title)

	text, err := ExtractText(path)
	require.NoError(t, err)
	compact := strings.Join(strings.Fields(text), "")
	assert.Contains(t, compact, "Migraine")
	assert.Contains(t, compact, "Paracetamol")
}
