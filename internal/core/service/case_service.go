package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
	"github.com/lawdesk/crm/internal/security"
)

type CaseService struct {
	cases   ports.CaseRepository
	clients ports.ClientRepository
	users   ports.UserRepository
	logger  zerolog.Logger
	now     func() time.Time
}

func NewCaseService(cases ports.CaseRepository, clients ports.ClientRepository, users ports.UserRepository, logger zerolog.Logger) *CaseService {
	return &CaseService{cases: cases, clients: clients, users: users, logger: logger, now: time.Now}
}

// Create opens a case for an existing client, assigned to the caller.
//
// The case is stored first with LinkPending, then added to the client's case
// set and marked linked. When the second step fails the stored case is
// returned together with an error wrapping domain.ErrCaseLinkPending; the
// link reconciler finishes the job later.
func (s *CaseService) Create(ctx context.Context, caller domain.Caller, in ports.CreateCaseInput) (*domain.Case, error) {
	if !caller.Registered() {
		return nil, domain.ErrNotRegistered
	}

	title := security.PlainText(in.Title)
	verr := &domain.ValidationError{}
	if in.ClientID == "" {
		verr.Add("client_id", "is required")
	}
	if title == "" {
		verr.Add("title", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.clients.FindByID(ctx, in.ClientID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &domain.Case{
		ClientID:    in.ClientID,
		AssociateID: caller.UserID,
		Title:       title,
		Description: security.PlainText(in.Description),
		Status:      domain.CaseOpen,
		Updates:     []domain.CaseUpdate{},
		LinkState:   domain.LinkPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.cases.Create(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("client_id", in.ClientID).Msg("failed to create case")
		return nil, fmt.Errorf("create case: %w", err)
	}

	if err := linkCase(ctx, s.clients, s.cases, c); err != nil {
		s.logger.Warn().Err(err).Str("case_id", c.ID).Str("client_id", c.ClientID).Msg("case link deferred to reconciler")
		return c, fmt.Errorf("%w: case %s: %v", domain.ErrCaseLinkPending, c.ID, err)
	}

	s.logger.Info().Str("case_id", c.ID).Str("client_id", c.ClientID).Str("associate_id", c.AssociateID).Msg("case created")
	return c, nil
}

// List returns every case in creation order with client and associate expanded.
func (s *CaseService) List(ctx context.Context) ([]ports.CaseView, error) {
	cases, err := s.cases.List(ctx, ports.CaseFilter{})
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return s.expand(ctx, cases)
}

func (s *CaseService) Get(ctx context.Context, id string) (*ports.CaseView, error) {
	c, err := s.cases.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.expand(ctx, []*domain.Case{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Update merges the provided fields. closed_at follows the status: it is set
// when the case enters closed, kept while it stays closed and cleared when it
// leaves.
func (s *CaseService) Update(ctx context.Context, id string, in ports.UpdateCaseInput) (*domain.Case, error) {
	var patch ports.CasePatch
	verr := &domain.ValidationError{}

	if in.Title != nil {
		title := security.PlainText(*in.Title)
		if title == "" {
			verr.Add("title", "must not be empty")
		}
		patch.Title = &title
	}
	if in.Description != nil {
		desc := security.PlainText(*in.Description)
		patch.Description = &desc
	}
	if in.Status != nil && !in.Status.Valid() {
		verr.Add("status", "must be one of: open in_progress closed")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	current, err := s.cases.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		status := *in.Status
		patch.Status = &status
		switch {
		case status != domain.CaseClosed:
			patch.ClosedAt = nil
		case current.Status == domain.CaseClosed && current.ClosedAt != nil:
			patch.ClosedAt = current.ClosedAt
		default:
			closed := s.now().UTC()
			patch.ClosedAt = &closed
		}
	}
	if patch.Title == nil && patch.Description == nil && patch.Status == nil {
		return current, nil
	}

	updated, err := s.cases.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update case: %w", err)
	}
	s.logger.Info().Str("case_id", id).Str("status", string(updated.Status)).Msg("case updated")
	return updated, nil
}

// AddUpdate appends a progress note authored by the caller.
func (s *CaseService) AddUpdate(ctx context.Context, caller domain.Caller, id, content string) (*domain.Case, error) {
	if !caller.Registered() {
		return nil, domain.ErrNotRegistered
	}
	content = security.PlainText(content)
	if content == "" {
		return nil, domain.NewValidationError("content", "is required")
	}

	update := domain.CaseUpdate{Content: content, AuthorID: caller.UserID, Timestamp: s.now().UTC()}
	c, err := s.cases.AppendUpdate(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("add case update: %w", err)
	}
	s.logger.Info().Str("case_id", id).Str("author_id", caller.UserID).Msg("case update added")
	return c, nil
}

func (s *CaseService) expand(ctx context.Context, cases []*domain.Case) ([]ports.CaseView, error) {
	clientIDs := make([]string, 0, len(cases))
	userIDs := make([]string, 0, len(cases))
	for _, c := range cases {
		clientIDs = append(clientIDs, c.ClientID)
		userIDs = append(userIDs, c.AssociateID)
	}

	clients, err := s.clients.FindByIDs(ctx, uniqueIDs(clientIDs))
	if err != nil {
		return nil, fmt.Errorf("expand case clients: %w", err)
	}
	users, err := s.users.FindByIDs(ctx, uniqueIDs(userIDs))
	if err != nil {
		return nil, fmt.Errorf("expand case associates: %w", err)
	}
	clientByID := indexClients(clients)
	userByID := indexUsers(users)

	views := make([]ports.CaseView, 0, len(cases))
	for _, c := range cases {
		views = append(views, ports.CaseView{Case: c, Client: clientByID[c.ClientID], Associate: userByID[c.AssociateID]})
	}
	return views, nil
}

// linkCase adds the case to its client's case set and marks it linked.
// Both steps are idempotent.
func linkCase(ctx context.Context, clients ports.ClientRepository, cases ports.CaseRepository, c *domain.Case) error {
	if err := clients.AddCase(ctx, c.ClientID, c.ID); err != nil {
		return fmt.Errorf("add case to client: %w", err)
	}
	if err := cases.MarkLinked(ctx, c.ID); err != nil {
		return fmt.Errorf("mark case linked: %w", err)
	}
	c.LinkState = domain.LinkLinked
	return nil
}

func indexClients(clients []*domain.Client) map[string]*domain.Client {
	m := make(map[string]*domain.Client, len(clients))
	for _, c := range clients {
		m[c.ID] = c
	}
	return m
}

func indexUsers(users []*domain.User) map[string]*domain.User {
	m := make(map[string]*domain.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return m
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
