package render

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/lawdesk/crm/internal/core/domain"
)

// CSV flattens a report into section,metric,value rows. Table cells become
// one row each with the metric named "<first column> / <column>". Charts are
// not exported.
type CSV struct{}

func NewCSV() *CSV { return &CSV{} }

func (*CSV) ContentType() string { return "text/csv; charset=utf-8" }
func (*CSV) Extension() string   { return "csv" }

func (*CSV) Render(doc domain.ReportDocument) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{{"section", "metric", "value"}}
	if doc.Period != "" {
		records = append(records, []string{doc.Title, "Period", doc.Period})
	}
	for _, s := range doc.Sections {
		for _, line := range s.Lines {
			records = append(records, []string{s.Heading, line.Label, line.Value})
		}
		if s.Table == nil {
			continue
		}
		for _, row := range s.Table.Rows {
			if len(row) == 0 {
				continue
			}
			for i := 1; i < len(s.Table.Columns) && i < len(row); i++ {
				records = append(records, []string{s.Heading, row[0] + " / " + s.Table.Columns[i], row[i]})
			}
		}
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}
