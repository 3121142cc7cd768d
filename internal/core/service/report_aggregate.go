package service

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

const monthLayout = "Jan 2006"

type financialSummary struct {
	Total   decimal.Decimal
	Count   int
	Paid    int
	Pending int
	Overdue int
}

// summarizeInvoices sums every amount regardless of status.
func summarizeInvoices(invoices []*domain.Invoice) financialSummary {
	sum := financialSummary{Total: decimal.Zero, Count: len(invoices)}
	for _, inv := range invoices {
		sum.Total = sum.Total.Add(inv.Amount)
		switch inv.Status {
		case domain.InvoicePaid:
			sum.Paid++
		case domain.InvoicePending:
			sum.Pending++
		case domain.InvoiceOverdue:
			sum.Overdue++
		}
	}
	return sum
}

type caseSummary struct {
	Total    int
	ByStatus map[domain.CaseStatus]int
	AvgDays  int
}

func summarizeCases(cases []*domain.Case) caseSummary {
	sum := caseSummary{Total: len(cases), ByStatus: make(map[domain.CaseStatus]int, len(domain.CaseStatuses))}
	for _, c := range cases {
		sum.ByStatus[c.Status]++
	}
	sum.AvgDays = averageDays(cases)
	return sum
}

// averageDays is the mean length of the closed cases rounded to whole days,
// zero when none are closed.
func averageDays(cases []*domain.Case) int {
	var (
		total time.Duration
		n     int
	)
	for _, c := range cases {
		d, ok := c.Duration()
		if !ok {
			continue
		}
		total += d
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(total.Hours() / 24 / float64(n)))
}

// dayCount renders n as "1 day" or "n days".
func dayCount(n int) string {
	if n == 1 {
		return "1 day"
	}
	return strconv.Itoa(n) + " days"
}

type clientSummary struct {
	Total         int
	New           int
	WithOpenCases int
	Monthly       []ports.MonthlyClients
}

// summarizeClients counts all clients, the ones created inside r and the ones
// with at least one case that is not closed.
func summarizeClients(clients []*domain.Client, cases []*domain.Case, r domain.DayRange) clientSummary {
	active := make(map[string]struct{})
	for _, c := range cases {
		if c.Status != domain.CaseClosed {
			active[c.ClientID] = struct{}{}
		}
	}

	sum := clientSummary{Total: len(clients), Monthly: monthlyClients(clients, r)}
	for _, c := range clients {
		if r.Contains(c.CreatedAt) {
			sum.New++
		}
		if _, ok := active[c.ID]; ok {
			sum.WithOpenCases++
		}
	}
	return sum
}

func monthlyClients(clients []*domain.Client, r domain.DayRange) []ports.MonthlyClients {
	months := r.Months()
	counts := make([]int, len(months))
	for _, c := range clients {
		if i := monthIndex(months, c.CreatedAt, r); i >= 0 {
			counts[i]++
		}
	}
	out := make([]ports.MonthlyClients, len(months))
	for i, m := range months {
		out[i] = ports.MonthlyClients{Month: m.Format(monthLayout), NewClients: counts[i]}
	}
	return out
}

func monthlyRevenue(invoices []*domain.Invoice, r domain.DayRange) []ports.MonthlyRevenue {
	months := r.Months()
	totals := make([]decimal.Decimal, len(months))
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for _, inv := range invoices {
		if i := monthIndex(months, inv.CreatedAt, r); i >= 0 {
			totals[i] = totals[i].Add(inv.Amount)
		}
	}
	out := make([]ports.MonthlyRevenue, len(months))
	for i, m := range months {
		out[i] = ports.MonthlyRevenue{Month: m.Format(monthLayout), Revenue: totals[i]}
	}
	return out
}

// monthIndex locates t among the month starts returned by DayRange.Months,
// or -1 when t is outside r.
func monthIndex(months []time.Time, t time.Time, r domain.DayRange) int {
	if !r.Contains(t) {
		return -1
	}
	local := t.In(r.From.Location())
	for i, m := range months {
		if local.Year() == m.Year() && local.Month() == m.Month() {
			return i
		}
	}
	return -1
}

func statusDistribution(cases []*domain.Case) []domain.ChartPoint {
	sum := summarizeCases(cases)
	points := make([]domain.ChartPoint, 0, len(domain.CaseStatuses))
	for _, s := range domain.CaseStatuses {
		points = append(points, domain.ChartPoint{Label: string(s), Value: float64(sum.ByStatus[s])})
	}
	return points
}

type performanceRow struct {
	AssociateID string
	Name        string
	Assigned    int
	Closed      int
	AvgDays     int
}

// summarizePerformance groups cases by associate, ordered by name.
func summarizePerformance(cases []*domain.Case, users map[string]*domain.User) []performanceRow {
	byAssociate := make(map[string][]*domain.Case)
	for _, c := range cases {
		byAssociate[c.AssociateID] = append(byAssociate[c.AssociateID], c)
	}

	rows := make([]performanceRow, 0, len(byAssociate))
	for id, assigned := range byAssociate {
		row := performanceRow{AssociateID: id, Name: displayName(users, id), Assigned: len(assigned), AvgDays: averageDays(assigned)}
		for _, c := range assigned {
			if c.Status == domain.CaseClosed {
				row.Closed++
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].AssociateID < rows[j].AssociateID
	})
	return rows
}

type attendanceRow struct {
	UserID    string
	Name      string
	CheckIns  int
	CheckOuts int
	Worked    time.Duration
}

// summarizeAttendance counts records per user and totals the time between
// paired check-ins and check-outs.
func summarizeAttendance(records []*domain.Attendance, users map[string]*domain.User) []attendanceRow {
	byUser := make(map[string][]*domain.Attendance)
	for _, a := range records {
		byUser[a.UserID] = append(byUser[a.UserID], a)
	}

	rows := make([]attendanceRow, 0, len(byUser))
	for id, recs := range byUser {
		row := attendanceRow{UserID: id, Name: displayName(users, id)}
		for _, a := range recs {
			switch a.Type {
			case domain.CheckIn:
				row.CheckIns++
			case domain.CheckOut:
				row.CheckOuts++
			}
		}
		for _, s := range domain.PairSessions(recs) {
			row.Worked += s.Worked()
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].UserID < rows[j].UserID
	})
	return rows
}

func displayName(users map[string]*domain.User, id string) string {
	if u, ok := users[id]; ok && u.Name != "" {
		return u.Name
	}
	return "Unknown (" + id + ")"
}
