package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/lawdesk/crm/internal/core/domain"
)

const (
	pdfFont       = "Helvetica"
	pdfLineHeight = 7.0
	pdfBarHeight  = 6.0
	pdfLabelWidth = 45.0
	pdfValueWidth = 28.0
)

// PDF lays a report out on A4 pages: a centred title, the period, then each
// section with its summary lines, table and optional bar chart.
type PDF struct{}

func NewPDF() *PDF { return &PDF{} }

func (*PDF) ContentType() string { return "application/pdf" }
func (*PDF) Extension() string   { return "pdf" }

func (*PDF) Render(doc domain.ReportDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 18)
	pdf.CellFormat(0, 12, tr(doc.Title), "", 1, "C", false, 0, "")
	if doc.Period != "" {
		pdf.SetFont(pdfFont, "", 11)
		pdf.CellFormat(0, pdfLineHeight, tr(doc.Period), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	for _, section := range doc.Sections {
		pdf.SetFont(pdfFont, "B", 14)
		pdf.CellFormat(0, 9, tr(section.Heading), "", 1, "L", false, 0, "")
		pdf.SetFont(pdfFont, "", 11)
		for _, line := range section.Lines {
			pdf.CellFormat(0, pdfLineHeight, tr(line.String()), "", 1, "L", false, 0, "")
		}
		if section.Table != nil {
			pdf.Ln(2)
			writeTable(pdf, tr, section.Table)
		}
		if len(section.Chart) > 0 {
			pdf.Ln(3)
			writeBarChart(pdf, tr, section.Chart)
		}
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func contentWidth(pdf *fpdf.Fpdf) float64 {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return pageW - left - right
}

// ensureSpace starts a new page when h millimetres do not fit on the current
// one and reports whether it did.
func ensureSpace(pdf *fpdf.Fpdf, h float64) bool {
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+h > pageH-bottom {
		pdf.AddPage()
		return true
	}
	return false
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, table *domain.ReportTable) {
	if len(table.Columns) == 0 {
		return
	}
	colW := contentWidth(pdf) / float64(len(table.Columns))

	header := func() {
		pdf.SetFont(pdfFont, "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range table.Columns {
			pdf.CellFormat(colW, pdfLineHeight, fit(pdf, tr(col), colW), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", 10)
	}

	header()
	for _, row := range table.Rows {
		if ensureSpace(pdf, pdfLineHeight) {
			header()
		}
		for i := range table.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(colW, pdfLineHeight, fit(pdf, tr(cell), colW), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont(pdfFont, "", 11)
}

// writeBarChart draws one horizontal bar per point, scaled to the largest value.
func writeBarChart(pdf *fpdf.Fpdf, tr func(string) string, points []domain.ChartPoint) {
	maxVal := 0.0
	for _, p := range points {
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}
	left, _, _, _ := pdf.GetMargins()
	barSpace := contentWidth(pdf) - pdfLabelWidth - pdfValueWidth

	pdf.SetFont(pdfFont, "", 9)
	pdf.SetFillColor(52, 101, 164)
	for _, p := range points {
		ensureSpace(pdf, pdfBarHeight+1)
		y := pdf.GetY()
		pdf.SetX(left)
		pdf.CellFormat(pdfLabelWidth, pdfBarHeight, fit(pdf, tr(p.Label), pdfLabelWidth), "", 0, "L", false, 0, "")

		w := 0.0
		if maxVal > 0 && p.Value > 0 {
			w = barSpace * p.Value / maxVal
		}
		if w > 0 {
			pdf.Rect(left+pdfLabelWidth, y+1, w, pdfBarHeight-2, "F")
		}
		pdf.SetXY(left+pdfLabelWidth+w+2, y)
		pdf.CellFormat(pdfValueWidth, pdfBarHeight, strconv.FormatFloat(p.Value, 'f', -1, 64), "", 1, "L", false, 0, "")
	}
	pdf.SetFont(pdfFont, "", 11)
}

// fit truncates s so it renders within w millimetres at the current font.
// s is already translated to the single-byte font encoding.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	limit := w - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > limit {
		s = s[:len(s)-1]
	}
	return s + "..."
}
