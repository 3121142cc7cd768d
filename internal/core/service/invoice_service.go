package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

type InvoiceService struct {
	invoices ports.InvoiceRepository
	clients  ports.ClientRepository
	cases    ports.CaseRepository
	notifier ports.Notifier
	money    MoneyFormatter
	logger   zerolog.Logger
	now      func() time.Time
}

// NewInvoiceService builds the invoice service. notifier may be nil to skip
// client notifications.
func NewInvoiceService(invoices ports.InvoiceRepository, clients ports.ClientRepository, cases ports.CaseRepository, notifier ports.Notifier, money MoneyFormatter, logger zerolog.Logger) *InvoiceService {
	return &InvoiceService{
		invoices: invoices,
		clients:  clients,
		cases:    cases,
		notifier: notifier,
		money:    money,
		logger:   logger,
		now:      time.Now,
	}
}

// Create bills a client for one of its cases and queues a notification to
// the client.
func (s *InvoiceService) Create(ctx context.Context, in ports.CreateInvoiceInput) (*domain.Invoice, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	verr := &domain.ValidationError{}
	if in.ClientID == "" {
		verr.Add("client_id", "is required")
	}
	if in.CaseID == "" {
		verr.Add("case_id", "is required")
	}
	if !in.Amount.IsPositive() {
		verr.Add("amount", "must be greater than zero")
	}
	switch {
	case in.DueDate.IsZero():
		verr.Add("due_date", "is required")
	case in.DueDate.Before(today):
		verr.Add("due_date", "must not be in the past")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	client, err := s.clients.FindByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	kase, err := s.cases.FindByID(ctx, in.CaseID)
	if err != nil {
		return nil, err
	}
	if kase.ClientID != client.ID {
		return nil, domain.NewValidationError("case_id", "does not belong to the client")
	}

	inv := &domain.Invoice{
		ClientID:  client.ID,
		CaseID:    kase.ID,
		Amount:    in.Amount,
		Status:    domain.InvoicePending,
		DueDate:   in.DueDate.UTC(),
		CreatedAt: now,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		s.logger.Error().Err(err).Str("client_id", client.ID).Str("case_id", kase.ID).Msg("failed to create invoice")
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.logger.Info().Str("invoice_id", inv.ID).Str("client_id", client.ID).Str("amount", inv.Amount.String()).Msg("invoice created")
	s.notify(client, kase, inv)
	return inv, nil
}

func (s *InvoiceService) List(ctx context.Context) ([]ports.InvoiceView, error) {
	invoices, err := s.invoices.List(ctx, ports.InvoiceFilter{})
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return s.expand(ctx, invoices)
}

func (s *InvoiceService) Get(ctx context.Context, id string) (*ports.InvoiceView, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.expand(ctx, []*domain.Invoice{inv})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UpdateStatus moves an invoice to status. paid_at is stamped when the new
// status is paid and cleared for any other status.
func (s *InvoiceService) UpdateStatus(ctx context.Context, caller domain.Caller, id string, status domain.InvoiceStatus) (*domain.Invoice, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of: pending paid overdue")
	}

	inv, err := s.invoices.UpdateStatus(ctx, id, status, domain.PaidAtFor(status, s.now()))
	if err != nil {
		return nil, fmt.Errorf("update invoice status: %w", err)
	}
	s.logger.Info().Str("invoice_id", id).Str("status", string(status)).Str("user_id", caller.UserID).Msg("invoice status updated")
	return inv, nil
}

func (s *InvoiceService) notify(client *domain.Client, kase *domain.Case, inv *domain.Invoice) {
	if s.notifier == nil || client.Email == "" {
		return
	}
	amount := s.money.Format(inv.Amount)
	due := inv.DueDate.Format("Jan 02, 2006")
	s.notifier.Enqueue(ports.EmailMessage{
		To:      []string{client.Email},
		Subject: fmt.Sprintf("New invoice for %s", kase.Title),
		Text: fmt.Sprintf("Dear %s,\n\nAn invoice of %s for \"%s\" has been issued and is due on %s.\n",
			client.Name, amount, kase.Title, due),
		HTML: fmt.Sprintf("<p>Dear %s,</p><p>An invoice of <strong>%s</strong> for &quot;%s&quot; has been issued and is due on %s.</p>",
			html.EscapeString(client.Name), amount, html.EscapeString(kase.Title), due),
	})
}

func (s *InvoiceService) expand(ctx context.Context, invoices []*domain.Invoice) ([]ports.InvoiceView, error) {
	clientIDs := make([]string, 0, len(invoices))
	caseIDs := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		clientIDs = append(clientIDs, inv.ClientID)
		caseIDs = append(caseIDs, inv.CaseID)
	}

	clients, err := s.clients.FindByIDs(ctx, uniqueIDs(clientIDs))
	if err != nil {
		return nil, fmt.Errorf("expand invoice clients: %w", err)
	}
	cases, err := s.cases.FindByIDs(ctx, uniqueIDs(caseIDs))
	if err != nil {
		return nil, fmt.Errorf("expand invoice cases: %w", err)
	}
	clientByID := indexClients(clients)
	caseByID := indexCases(cases)

	views := make([]ports.InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, ports.InvoiceView{Invoice: inv, Client: clientByID[inv.ClientID], Case: caseByID[inv.CaseID]})
	}
	return views, nil
}
