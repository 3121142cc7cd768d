package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

const dayLayout = "Jan 02, 2006"

// ReportSources groups the repositories the reports read from.
type ReportSources struct {
	Invoices   ports.InvoiceRepository
	Cases      ports.CaseRepository
	Clients    ports.ClientRepository
	Users      ports.UserRepository
	Attendance ports.AttendanceRepository
}

type ReportService struct {
	src       ReportSources
	renderers map[domain.ReportFormat]ports.Renderer
	money     MoneyFormatter
	logger    zerolog.Logger
}

func NewReportService(src ReportSources, renderers map[domain.ReportFormat]ports.Renderer, money MoneyFormatter, logger zerolog.Logger) *ReportService {
	return &ReportService{src: src, renderers: renderers, money: money, logger: logger}
}

// Generate builds and renders a report. Financial, cases and clients reports
// are always PDF; custom reports honour the configured format.
func (s *ReportService) Generate(ctx context.Context, caller domain.Caller, in ports.GenerateReportInput) (*domain.ReportArtifact, error) {
	kind, err := domain.ParseReportType(in.Type)
	if err != nil {
		return nil, err
	}

	format := domain.FormatPDF
	charts := in.Config.IncludeCharts
	var doc domain.ReportDocument

	switch kind {
	case domain.ReportFinancial:
		doc, err = s.financialReport(ctx, in.Range, charts)
	case domain.ReportCases:
		doc, err = s.casesReport(ctx, in.Range, charts)
	case domain.ReportClients:
		doc, err = s.clientsReport(ctx, in.Range, charts)
	case domain.ReportCustom:
		var metrics []domain.Metric
		metrics, format, err = customOptions(in.Config)
		if err != nil {
			return nil, err
		}
		doc, err = s.customReport(ctx, in.Range, metrics, charts)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s report: %w", kind, err)
	}

	renderer, ok := s.renderers[format]
	if !ok {
		return nil, fmt.Errorf("no renderer registered for %s", format)
	}
	body, err := renderer.Render(doc)
	if err != nil {
		s.logger.Error().Err(err).Str("type", string(kind)).Str("format", string(format)).Msg("report rendering failed")
		return nil, fmt.Errorf("render %s report: %w", kind, err)
	}

	s.logger.Info().Str("type", string(kind)).Str("format", string(format)).Str("user_id", caller.UserID).Int("bytes", len(body)).Msg("report generated")
	return &domain.ReportArtifact{
		Filename:    fmt.Sprintf("%s-report.%s", kind, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *ReportService) RevenueSeries(ctx context.Context, r domain.DayRange) ([]ports.MonthlyRevenue, error) {
	invoices, err := s.src.Invoices.List(ctx, ports.InvoiceFilter{CreatedFrom: r.From, CreatedTo: r.To})
	if err != nil {
		return nil, fmt.Errorf("revenue series: %w", err)
	}
	return monthlyRevenue(invoices, r), nil
}

func (s *ReportService) CaseStatusSeries(ctx context.Context, r domain.DayRange) ([]domain.ChartPoint, error) {
	cases, err := s.src.Cases.List(ctx, ports.CaseFilter{CreatedFrom: r.From, CreatedTo: r.To})
	if err != nil {
		return nil, fmt.Errorf("case status series: %w", err)
	}
	return statusDistribution(cases), nil
}

func (s *ReportService) ClientSeries(ctx context.Context, r domain.DayRange) ([]ports.MonthlyClients, error) {
	clients, err := s.src.Clients.List(ctx, ports.ClientFilter{CreatedFrom: r.From, CreatedTo: r.To})
	if err != nil {
		return nil, fmt.Errorf("client series: %w", err)
	}
	return monthlyClients(clients, r), nil
}

func (s *ReportService) financialReport(ctx context.Context, r domain.DayRange, charts bool) (domain.ReportDocument, error) {
	invoices, err := s.src.Invoices.List(ctx, ports.InvoiceFilter{CreatedFrom: r.From, CreatedTo: r.To})
	if err != nil {
		return domain.ReportDocument{}, err
	}
	sum := summarizeInvoices(invoices)

	doc := domain.ReportDocument{
		Title:  "Financial Report",
		Period: period(r),
		Sections: []domain.ReportSection{{
			Heading: "Summary",
			Lines: []domain.ReportLine{
				{Label: "Total Revenue", Value: s.money.Format(sum.Total)},
				{Label: "Paid Invoices", Value: strconv.Itoa(sum.Paid)},
				{Label: "Pending Invoices", Value: strconv.Itoa(sum.Pending)},
			},
		}},
	}
	if charts {
		doc.Sections = append(doc.Sections, domain.ReportSection{
			Heading: "Revenue by Month",
			Chart:   s.revenuePoints(monthlyRevenue(invoices, r)),
		})
	}
	return doc, nil
}

func (s *ReportService) casesReport(ctx context.Context, r domain.DayRange, charts bool) (domain.ReportDocument, error) {
	section, err := s.casesSection(ctx, r, charts, true)
	if err != nil {
		return domain.ReportDocument{}, err
	}
	section.Heading = "Summary"
	return domain.ReportDocument{Title: "Case Report", Period: period(r), Sections: []domain.ReportSection{section}}, nil
}

func (s *ReportService) clientsReport(ctx context.Context, r domain.DayRange, charts bool) (domain.ReportDocument, error) {
	section, err := s.clientsSection(ctx, r, charts)
	if err != nil {
		return domain.ReportDocument{}, err
	}
	section.Heading = "Summary"
	return domain.ReportDocument{Title: "Client Report", Period: period(r), Sections: []domain.ReportSection{section}}, nil
}

func (s *ReportService) customReport(ctx context.Context, r domain.DayRange, metrics []domain.Metric, charts bool) (domain.ReportDocument, error) {
	doc := domain.ReportDocument{Title: "Custom Report", Period: period(r)}
	for _, m := range metrics {
		var (
			section domain.ReportSection
			err     error
		)
		switch m {
		case domain.MetricRevenue:
			section, err = s.revenueSection(ctx, r, charts)
		case domain.MetricCases:
			section, err = s.casesSection(ctx, r, charts, false)
		case domain.MetricClients:
			section, err = s.clientsSection(ctx, r, charts)
		case domain.MetricPerformance:
			section, err = s.performanceSection(ctx, r, charts)
		case domain.MetricAttendance:
			section, err = s.attendanceSection(ctx, r)
		}
		if err != nil {
			return domain.ReportDocument{}, fmt.Errorf("%s section: %w", m, err)
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc, nil
}

func (s *ReportService) revenueSection(ctx context.Context, r domain.DayRange, charts bool) (domain.ReportSection, error) {
	invoices, err := s.src.Invoices.List(ctx, ports.InvoiceFilter{CreatedFrom: r.From, CreatedTo: r.To})
	if err != nil {
		return domain.ReportSection{}, err
	}
	sum := summarizeInvoices(invoices)
	series := monthlyRevenue(invoices, r)

	table := &domain.ReportTable{Columns: []string{"Month", "Revenue"}}
	for _, p := range series {
		table.Rows = append(table.Rows, []string{p.Month, s.money.Format(p.Revenue)})
	}
	section := domain.ReportSection{
		Heading: "Revenue",
		Lines: []domain.ReportLine{
			{Label: "Total Revenue", Value: s.money.Format(sum.Total)},
			{Label: "Paid Invoices", Value: strconv.Itoa(sum.Paid)},
			{Label: "Pending Invoices", Value: strconv.Itoa(sum.Pending)},
			{Label: "Overdue Invoices", Value: strconv.Itoa(sum.Overdue)},
		},
		Table: table,
	}
	if charts {
		section.Chart = s.revenuePoints(series)
	}
	return section, nil
}

// casesSection summarises cases created in r. withTable adds one row per case.
func (s *ReportService) casesSection(ctx context.Context, r domain.DayRange, charts, withTable bool) (domain.ReportSection, error) {
	cases, err := s.src.Cases.List(ctx, ports.CaseFilter{CreatedFrom: r.From, CreatedTo: r.To})
	if err != nil {
		return domain.ReportSection{}, err
	}
	sum := summarizeCases(cases)

	section := domain.ReportSection{
		Heading: "Cases",
		Lines: []domain.ReportLine{
			{Label: "Total Cases", Value: strconv.Itoa(sum.Total)},
			{Label: "Open Cases", Value: strconv.Itoa(sum.ByStatus[domain.CaseOpen])},
			{Label: "In Progress Cases", Value: strconv.Itoa(sum.ByStatus[domain.CaseInProgress])},
			{Label: "Closed Cases", Value: strconv.Itoa(sum.ByStatus[domain.CaseClosed])},
			{Label: "Average Case Length", Value: dayCount(sum.AvgDays)},
		},
	}

	if withTable && len(cases) > 0 {
		ids := make([]string, 0, len(cases))
		for _, c := range cases {
			ids = append(ids, c.ClientID)
		}
		clients, err := s.src.Clients.FindByIDs(ctx, uniqueIDs(ids))
		if err != nil {
			return domain.ReportSection{}, err
		}
		byID := indexClients(clients)

		table := &domain.ReportTable{Columns: []string{"Title", "Client", "Status", "Opened", "Closed"}}
		for _, c := range cases {
			client := ""
			if cl, ok := byID[c.ClientID]; ok {
				client = cl.Name
			}
			closed := ""
			if c.ClosedAt != nil {
				closed = c.ClosedAt.In(r.From.Location()).Format(dayLayout)
			}
			table.Rows = append(table.Rows, []string{
				c.Title, client, string(c.Status), c.CreatedAt.In(r.From.Location()).Format(dayLayout), closed,
			})
		}
		section.Table = table
	}
	if charts {
		section.Chart = statusDistribution(cases)
	}
	return section, nil
}

func (s *ReportService) clientsSection(ctx context.Context, r domain.DayRange, charts bool) (domain.ReportSection, error) {
	clients, err := s.src.Clients.List(ctx, ports.ClientFilter{})
	if err != nil {
		return domain.ReportSection{}, err
	}
	cases, err := s.src.Cases.List(ctx, ports.CaseFilter{})
	if err != nil {
		return domain.ReportSection{}, err
	}
	sum := summarizeClients(clients, cases, r)

	table := &domain.ReportTable{Columns: []string{"Month", "New Clients"}}
	for _, m := range sum.Monthly {
		table.Rows = append(table.Rows, []string{m.Month, strconv.Itoa(m.NewClients)})
	}
	section := domain.ReportSection{
		Heading: "Clients",
		Lines: []domain.ReportLine{
			{Label: "Total Clients", Value: strconv.Itoa(sum.Total)},
			{Label: "New Clients", Value: strconv.Itoa(sum.New)},
			{Label: "Clients With Open Cases", Value: strconv.Itoa(sum.WithOpenCases)},
		},
		Table: table,
	}
	if charts {
		for _, m := range sum.Monthly {
			section.Chart = append(section.Chart, domain.ChartPoint{Label: m.Month, Value: float64(m.NewClients)})
		}
	}
	return section, nil
}

func (s *ReportService) performanceSection(ctx context.Context, r domain.DayRange, charts bool) (domain.ReportSection, error) {
	cases, err := s.src.Cases.List(ctx, ports.CaseFilter{CreatedFrom: r.From, CreatedTo: r.To})
	if err != nil {
		return domain.ReportSection{}, err
	}
	ids := make([]string, 0, len(cases))
	for _, c := range cases {
		ids = append(ids, c.AssociateID)
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return domain.ReportSection{}, err
	}

	rows := summarizePerformance(cases, users)
	table := &domain.ReportTable{Columns: []string{"Associate", "Assigned", "Closed", "Avg Resolution (days)"}}
	section := domain.ReportSection{Heading: "Performance", Table: table}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{row.Name, strconv.Itoa(row.Assigned), strconv.Itoa(row.Closed), strconv.Itoa(row.AvgDays)})
		if charts {
			section.Chart = append(section.Chart, domain.ChartPoint{Label: row.Name, Value: float64(row.Closed)})
		}
	}
	return section, nil
}

func (s *ReportService) attendanceSection(ctx context.Context, r domain.DayRange) (domain.ReportSection, error) {
	records, err := s.src.Attendance.List(ctx, ports.AttendanceFilter{From: r.From, To: r.To})
	if err != nil {
		return domain.ReportSection{}, err
	}
	ids := make([]string, 0, len(records))
	for _, a := range records {
		ids = append(ids, a.UserID)
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return domain.ReportSection{}, err
	}

	table := &domain.ReportTable{Columns: []string{"User", "Check-ins", "Check-outs", "Hours Worked"}}
	for _, row := range summarizeAttendance(records, users) {
		table.Rows = append(table.Rows, []string{
			row.Name, strconv.Itoa(row.CheckIns), strconv.Itoa(row.CheckOuts), fmt.Sprintf("%.2f", row.Worked.Hours()),
		})
	}
	return domain.ReportSection{Heading: "Attendance", Table: table}, nil
}

func (s *ReportService) usersByID(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return map[string]*domain.User{}, nil
	}
	users, err := s.src.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return indexUsers(users), nil
}

func (s *ReportService) revenuePoints(series []ports.MonthlyRevenue) []domain.ChartPoint {
	points := make([]domain.ChartPoint, 0, len(series))
	for _, p := range series {
		points = append(points, domain.ChartPoint{Label: p.Month, Value: p.Revenue.InexactFloat64()})
	}
	return points
}

// customOptions validates the custom report configuration. An empty metric
// list selects every metric; duplicates are dropped.
func customOptions(cfg ports.ReportConfig) ([]domain.Metric, domain.ReportFormat, error) {
	format := cfg.Format
	if format == "" {
		format = domain.FormatPDF
	}

	verr := &domain.ValidationError{}
	if !format.Valid() {
		verr.Add("config.format", "must be one of: pdf excel csv")
	}

	metrics := domain.AllMetrics
	if len(cfg.Metrics) > 0 {
		metrics = make([]domain.Metric, 0, len(cfg.Metrics))
		for _, m := range cfg.Metrics {
			if !m.Valid() {
				verr.Add("config.metrics", fmt.Sprintf("unknown metric %q", m))
				continue
			}
			if !containsMetric(metrics, m) {
				metrics = append(metrics, m)
			}
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, "", err
	}
	return metrics, format, nil
}

func containsMetric(metrics []domain.Metric, m domain.Metric) bool {
	for _, x := range metrics {
		if x == m {
			return true
		}
	}
	return false
}

func period(r domain.DayRange) string {
	return fmt.Sprintf("Period: %s - %s", r.From.Format(dayLayout), r.To.Format(dayLayout))
}
