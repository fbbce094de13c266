package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Found Items Report",
		Sheet:   "Found Items Report",
		Headers: []string{"Item", "Description"},
		Rows: []map[string]string{
			{"Item": "Wallet", "Description": "Black leather wallet with a broken zipper and two receipts"},
			{"Item": "Key"},
		},
	}
}

func TestColumnWidths(t *testing.T) {
	widths := ColumnWidths(sampleDataset(), 10, 30, 2)
	assert.Equal(t, []int{12, 32}, widths)

	wide := ColumnWidths(Dataset{Headers: []string{"ClaimantName"}}, 10, 30, 2)
	assert.Equal(t, []int{14}, wide)
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Item,Description", lines[0])
	assert.Equal(t, "Key,", lines[2])

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "Wallet …", truncate("Wallet leather", 8))
}

func TestXLSXExporterRender(t *testing.T) {
	exporter := NewXLSXExporter()
	out, err := exporter.Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "xlsx", exporter.Extension())

	book, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Found Items Report"}, book.GetSheetList())
	rows, err := book.GetRows("Found Items Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Item", "Description"}, rows[0])
	assert.Equal(t, "Wallet", rows[1][0])

	width, err := book.GetColWidth("Found Items Report", "B")
	require.NoError(t, err)
	assert.InDelta(t, 32, width, 0.01)
}

func TestXLSXExporterRequiresHeaders(t *testing.T) {
	_, err := NewXLSXExporter().Render(Dataset{Sheet: "x"})
	assert.Error(t, err)
}
