package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "Attendance March 2024",
		Columns: []string{"Date", "Subject", "Status"},
		Rows: [][]string{
			{"2024-03-04", "Math", "present"},
			{"2024-03-05", "Biology"},
		},
		Summary: [][2]string{{"Attendance", "50.0%"}},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestRenderCSVPadsShortRows(t *testing.T) {
	file, err := Render(FormatCSV, "attendance-2024-03", sampleTable())
	require.NoError(t, err)

	assert.Equal(t, "attendance-2024-03.csv", file.Name)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	assert.Equal(t, "Date,Subject,Status", lines[0])
	assert.Equal(t, "2024-03-05,Biology,", lines[2])
	assert.Equal(t, "Attendance,50.0%", lines[len(lines)-1])
}

func TestRenderPDF(t *testing.T) {
	file, err := Render(FormatPDF, "attendance-2024-03", sampleTable())
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestRenderRequiresColumns(t *testing.T) {
	_, err := Render(FormatCSV, "empty", Table{})
	assert.Error(t, err)
}
