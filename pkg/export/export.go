package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Format names a rendering target.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts csv or pdf, case-insensitively. Empty means CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Table is a titled grid with an optional summary block.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
	Summary [][2]string
}

// File is a rendered document ready to be served.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Render produces the document for table in the given format.
func Render(format Format, name string, table Table) (*File, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("export requires at least one column")
	}
	var (
		body []byte
		err  error
	)
	switch format {
	case FormatCSV:
		body, err = renderCSV(table)
	case FormatPDF:
		body, err = renderPDF(table)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return &File{Name: name + "." + string(format), ContentType: format.ContentType(), Body: body}, nil
}

func renderCSV(table Table) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(table.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range table.Rows {
		if err := w.Write(pad(row, len(table.Columns))); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	if len(table.Summary) > 0 {
		if err := w.Write(nil); err != nil {
			return nil, fmt.Errorf("write csv separator: %w", err)
		}
		for _, kv := range table.Summary {
			if err := w.Write([]string{kv[0], kv[1]}); err != nil {
				return nil, fmt.Errorf("write csv summary: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPDF(table Table) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if table.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(table.Title), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(table.Columns))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range table.Columns {
		pdf.CellFormat(colWidth, 7, tr(col), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range table.Rows {
		for _, cell := range pad(row, len(table.Columns)) {
			pdf.CellFormat(colWidth, 6, tr(cell), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(table.Summary) > 0 {
		pdf.Ln(4)
		for _, kv := range table.Summary {
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(50, 6, tr(kv[0]), "", 0, "", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "", false, 0, "")
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pad(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
