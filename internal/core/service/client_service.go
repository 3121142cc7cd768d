package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
	"github.com/lawdesk/crm/internal/security"
)

type ClientService struct {
	clients ports.ClientRepository
	cases   ports.CaseRepository
	storage ports.ObjectStorage
	logger  zerolog.Logger
	now     func() time.Time
}

// NewClientService builds the client service. storage may be nil, in which
// case UploadDocument reports domain.ErrStorageUnavailable.
func NewClientService(clients ports.ClientRepository, cases ports.CaseRepository, storage ports.ObjectStorage, logger zerolog.Logger) *ClientService {
	return &ClientService{clients: clients, cases: cases, storage: storage, logger: logger, now: time.Now}
}

func (s *ClientService) Create(ctx context.Context, in ports.CreateClientInput) (*domain.Client, error) {
	name := security.PlainText(in.Name)
	email := normalizeEmail(in.Email)
	phone := security.PlainText(in.Phone)

	verr := &domain.ValidationError{}
	if name == "" {
		verr.Add("name", "is required")
	}
	if email == "" {
		verr.Add("email", "is required")
	}
	if phone == "" {
		verr.Add("phone", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	client := &domain.Client{
		Name:      name,
		Email:     email,
		Phone:     phone,
		Documents: []domain.Document{},
		CaseIDs:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		s.logger.Error().Err(err).Msg("failed to create client")
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.logger.Info().Str("client_id", client.ID).Msg("client created")
	return client, nil
}

// List returns every client in creation order with its cases expanded.
// Case ids that no longer resolve are left out of the expansion.
func (s *ClientService) List(ctx context.Context) ([]ports.ClientView, error) {
	clients, err := s.clients.List(ctx, ports.ClientFilter{})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	var ids []string
	for _, c := range clients {
		ids = append(ids, c.CaseIDs...)
	}
	byID, err := s.casesByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	views := make([]ports.ClientView, 0, len(clients))
	for _, c := range clients {
		views = append(views, ports.ClientView{Client: c, Cases: pickCases(byID, c.CaseIDs)})
	}
	return views, nil
}

func (s *ClientService) Get(ctx context.Context, id string) (*ports.ClientView, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	byID, err := s.casesByID(ctx, client.CaseIDs)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &ports.ClientView{Client: client, Cases: pickCases(byID, client.CaseIDs)}, nil
}

func (s *ClientService) Update(ctx context.Context, id string, in ports.UpdateClientInput) (*domain.Client, error) {
	var patch ports.ClientPatch
	verr := &domain.ValidationError{}

	if in.Name != nil {
		name := security.PlainText(*in.Name)
		if name == "" {
			verr.Add("name", "must not be empty")
		}
		patch.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			verr.Add("email", "must not be empty")
		}
		patch.Email = &email
	}
	if in.Phone != nil {
		phone := security.PlainText(*in.Phone)
		if phone == "" {
			verr.Add("phone", "must not be empty")
		}
		patch.Phone = &phone
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	current, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Email != nil && *patch.Email != current.Email {
		if err := s.ensureEmailFree(ctx, *patch.Email, id); err != nil {
			return nil, err
		}
	}
	if patch.Name == nil && patch.Email == nil && patch.Phone == nil {
		return current, nil
	}

	updated, err := s.clients.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	s.logger.Info().Str("client_id", id).Msg("client updated")
	return updated, nil
}

// AddDocument appends a document reference to the client.
func (s *ClientService) AddDocument(ctx context.Context, id string, in ports.AddDocumentInput) (*domain.Client, error) {
	name := security.PlainText(in.Name)
	verr := &domain.ValidationError{}
	if in.URL == "" {
		verr.Add("url", "is required")
	}
	if name == "" {
		verr.Add("name", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	doc := domain.Document{URL: in.URL, Name: name, UploadedAt: s.now().UTC()}
	client, err := s.clients.AppendDocument(ctx, id, doc)
	if err != nil {
		return nil, fmt.Errorf("add document: %w", err)
	}
	s.logger.Info().Str("client_id", id).Str("document", name).Msg("document added")
	return client, nil
}

// UploadDocument stores the file in object storage and appends the resulting
// document reference to the client.
func (s *ClientService) UploadDocument(ctx context.Context, id string, in ports.UploadDocumentInput) (*domain.Client, error) {
	if s.storage == nil {
		return nil, domain.ErrStorageUnavailable
	}
	if in.Body == nil || in.Size <= 0 {
		return nil, domain.NewValidationError("file", "is required")
	}
	if _, err := s.clients.FindByID(ctx, id); err != nil {
		return nil, err
	}

	filename := security.Filename(in.Filename)
	name := security.PlainText(in.Name)
	if name == "" {
		name = filename
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("clients/%s/%s-%s", id, uuid.NewString(), filename)
	url, err := s.storage.Put(ctx, key, in.Body, in.Size, contentType)
	if err != nil {
		s.logger.Error().Err(err).Str("client_id", id).Str("key", key).Msg("document upload failed")
		return nil, fmt.Errorf("upload document: %w", err)
	}

	return s.AddDocument(ctx, id, ports.AddDocumentInput{URL: url, Name: name})
}

// ensureEmailFree fails with ErrEmailTaken when another client owns email.
func (s *ClientService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	other, err := s.clients.FindByEmail(ctx, email)
	switch {
	case err == nil && other.ID != selfID:
		return domain.ErrEmailTaken
	case err != nil && !errors.Is(err, domain.ErrClientNotFound):
		return fmt.Errorf("check client email: %w", err)
	}
	return nil
}

func (s *ClientService) casesByID(ctx context.Context, ids []string) (map[string]*domain.Case, error) {
	if len(ids) == 0 {
		return map[string]*domain.Case{}, nil
	}
	cases, err := s.cases.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return indexCases(cases), nil
}

func indexCases(cases []*domain.Case) map[string]*domain.Case {
	m := make(map[string]*domain.Case, len(cases))
	for _, c := range cases {
		m[c.ID] = c
	}
	return m
}

func pickCases(byID map[string]*domain.Case, ids []string) []*domain.Case {
	out := make([]*domain.Case, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}
