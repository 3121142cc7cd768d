package render

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lawdesk/crm/internal/core/domain"
)

const maxSheetName = 31

// Excel writes a workbook with one sheet per report section. Each sheet
// repeats the report title and period, then the summary lines, the table and
// the chart data. A native column chart is added when the section has one.
type Excel struct{}

func NewExcel() *Excel { return &Excel{} }

func (*Excel) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (*Excel) Extension() string { return "xlsx" }

func (*Excel) Render(doc domain.ReportDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("render excel: style: %w", err)
	}

	sections := doc.Sections
	if len(sections) == 0 {
		sections = []domain.ReportSection{{Heading: "Summary"}}
	}

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool, len(sections))
	for i, section := range sections {
		name := sheetName(section.Heading, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, fmt.Errorf("render excel: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("render excel: new sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, doc, section, bold); err != nil {
			return nil, fmt.Errorf("render excel: sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render excel: write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, doc domain.ReportDocument, section domain.ReportSection, bold int) error {
	sw := &sheetWriter{f: f, sheet: sheet, row: 1}

	sw.write(doc.Title)
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return err
	}
	if doc.Period != "" {
		sw.write(doc.Period)
	}
	sw.row++

	for _, line := range section.Lines {
		sw.write(line.Label, line.Value)
	}

	if t := section.Table; t != nil && len(t.Columns) > 0 {
		sw.row++
		sw.header(bold, toRow(t.Columns)...)
		for _, r := range t.Rows {
			sw.write(toRow(r)...)
		}
	}

	if len(section.Chart) > 0 {
		sw.row++
		sw.header(bold, "Label", "Value")
		first := sw.row
		for _, p := range section.Chart {
			sw.write(p.Label, p.Value)
		}
		last := sw.row - 1
		if sw.err == nil {
			sw.err = addColumnChart(f, sheet, section.Heading, first, last)
		}
	}

	if sw.err != nil {
		return sw.err
	}
	return f.SetColWidth(sheet, "A", "E", 22)
}

// sheetWriter appends rows starting at column A and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) write(values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err == nil {
		err = w.f.SetSheetRow(w.sheet, cell, &values)
	}
	w.err = err
	w.row++
}

func (w *sheetWriter) header(style int, values ...any) {
	row := w.row
	w.write(values...)
	if w.err != nil {
		return
	}
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(len(values), row)
	w.err = w.f.SetCellStyle(w.sheet, from, to, style)
}

func addColumnChart(f *excelize.File, sheet, title string, first, last int) error {
	ref := "'" + strings.ReplaceAll(sheet, "'", "''") + "'!"
	anchor, err := excelize.CoordinatesToCellName(4, first)
	if err != nil {
		return err
	}
	return f.AddChart(sheet, anchor, &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       title,
			Categories: fmt.Sprintf("%s$A$%d:$A$%d", ref, first, last),
			Values:     fmt.Sprintf("%s$B$%d:$B$%d", ref, first, last),
		}},
		Title: []excelize.RichTextRun{{Text: title}},
	})
}

func toRow(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// sheetName derives a unique worksheet name from a section heading. Excel
// limits names to 31 characters and forbids : \ / ? * [ ].
func sheetName(heading string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(heading))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Sheet"
	}
	base = truncateRunes(base, maxSheetName)

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
