package domain

import "strings"

// ReportType selects which aggregation a report runs.
type ReportType string

const (
	ReportFinancial ReportType = "financial"
	ReportCases     ReportType = "cases"
	ReportClients   ReportType = "clients"
	ReportCustom    ReportType = "custom"
)

// ParseReportType maps a request value to a ReportType.
func ParseReportType(s string) (ReportType, error) {
	switch t := ReportType(strings.ToLower(strings.TrimSpace(s))); t {
	case ReportFinancial, ReportCases, ReportClients, ReportCustom:
		return t, nil
	}
	return "", ErrInvalidReportType
}

// ReportFormat selects the artifact encoding.
type ReportFormat string

const (
	FormatPDF   ReportFormat = "pdf"
	FormatExcel ReportFormat = "excel"
	FormatCSV   ReportFormat = "csv"
)

func (f ReportFormat) Valid() bool {
	switch f {
	case FormatPDF, FormatExcel, FormatCSV:
		return true
	}
	return false
}

// Metric is a section a custom report can include.
type Metric string

const (
	MetricRevenue     Metric = "revenue"
	MetricCases       Metric = "cases"
	MetricClients     Metric = "clients"
	MetricPerformance Metric = "performance"
	MetricAttendance  Metric = "attendance"
)

// AllMetrics is the default selection for a custom report.
var AllMetrics = []Metric{MetricRevenue, MetricCases, MetricClients, MetricPerformance, MetricAttendance}

func (m Metric) Valid() bool {
	for _, known := range AllMetrics {
		if m == known {
			return true
		}
	}
	return false
}

// ReportDocument is the format-neutral content of a report artifact.
type ReportDocument struct {
	Title    string
	Period   string
	Sections []ReportSection
}

// ReportSection is a headed block of label/value lines, optionally followed
// by a table and a chart series.
type ReportSection struct {
	Heading string
	Lines   []ReportLine
	Table   *ReportTable
	Chart   []ChartPoint
}

// ReportLine is a single "Label: Value" summary line.
type ReportLine struct {
	Label string
	Value string
}

func (l ReportLine) String() string {
	return l.Label + ": " + l.Value
}

// ReportTable is a simple grid of already formatted cells.
type ReportTable struct {
	Columns []string
	Rows    [][]string
}

// ChartPoint is one bar of a section chart.
type ChartPoint struct {
	Label string  `json:"name"`
	Value float64 `json:"value"`
}

// ReportArtifact is a rendered report ready to stream to the caller.
type ReportArtifact struct {
	Filename    string
	ContentType string
	Body        []byte
}
