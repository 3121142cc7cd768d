package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

type stubStorage struct {
	keys []string
	body []byte
	err  error
}

func (s *stubStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	b, _ := io.ReadAll(body)
	s.keys = append(s.keys, key)
	s.body = b
	return "https://files.example/" + key, nil
}

func newTestClientService(storage ports.ObjectStorage) (*ClientService, *stubClientRepo, *stubCaseRepo) {
	clients := newStubClientRepo()
	cases := newStubCaseRepo()
	svc := NewClientService(clients, cases, storage, discardLogger)
	svc.now = clock
	return svc, clients, cases
}

func TestClientService_Create_Success(t *testing.T) {
	svc, _, _ := newTestClientService(nil)

	c, err := svc.Create(context.Background(), ports.CreateClientInput{Name: "Acme <b>Corp</b>", Email: "Legal@Acme.example", Phone: "555-0101"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "Acme Corp" {
		t.Errorf("markup must be stripped, got %q", c.Name)
	}
	if c.Email != "legal@acme.example" {
		t.Errorf("email = %q", c.Email)
	}
	if c.Documents == nil || c.CaseIDs == nil {
		t.Error("documents and cases must start as empty lists")
	}
}

func TestClientService_Create_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestClientService(nil)
	ctx := context.Background()

	in := ports.CreateClientInput{Name: "Acme", Email: "legal@acme.example", Phone: "555"}
	if _, err := svc.Create(ctx, in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, in); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestClientService_Create_MissingFields(t *testing.T) {
	svc, clients, _ := newTestClientService(nil)

	_, err := svc.Create(context.Background(), ports.CreateClientInput{Name: "Acme"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("expected email and phone errors, got %+v", verr.Fields)
	}
	if len(clients.clients) != 0 {
		t.Error("nothing must be persisted")
	}
}

func TestClientService_Get_NotFound(t *testing.T) {
	svc, _, _ := newTestClientService(nil)

	if _, err := svc.Get(context.Background(), "client_missing"); !errors.Is(err, domain.ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientService_List_ExpandsCases(t *testing.T) {
	svc, clients, cases := newTestClientService(nil)
	ctx := context.Background()
	c := seedClient(t, clients, "a@example.com")
	seedClient(t, clients, "b@example.com")

	k := &domain.Case{ClientID: c.ID, Title: "Dispute", Status: domain.CaseOpen}
	_ = cases.Create(ctx, k)
	_ = clients.AddCase(ctx, c.ID, k.ID)
	_ = clients.AddCase(ctx, c.ID, "case_gone")

	views, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(views))
	}
	if views[0].Client.ID != c.ID {
		t.Error("list must keep insertion order")
	}
	if len(views[0].Cases) != 1 || views[0].Cases[0].Title != "Dispute" {
		t.Errorf("expected one expanded case, got %+v", views[0].Cases)
	}
	if len(views[1].Cases) != 0 {
		t.Error("second client has no cases")
	}
}

func TestClientService_Update_PartialMerge(t *testing.T) {
	svc, clients, _ := newTestClientService(nil)
	c := seedClient(t, clients, "a@example.com")

	updated, err := svc.Update(context.Background(), c.ID, ports.UpdateClientInput{Phone: strPtr("555-9999")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Phone != "555-9999" {
		t.Errorf("phone = %q", updated.Phone)
	}
	if updated.Name != c.Name || updated.Email != c.Email {
		t.Error("untouched fields must be preserved")
	}
}

func TestClientService_Update_EmailTakenByOther(t *testing.T) {
	svc, clients, _ := newTestClientService(nil)
	a := seedClient(t, clients, "a@example.com")
	seedClient(t, clients, "b@example.com")

	if _, err := svc.Update(context.Background(), a.ID, ports.UpdateClientInput{Email: strPtr("b@example.com")}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestClientService_AddDocument_Appends(t *testing.T) {
	svc, clients, _ := newTestClientService(nil)
	c := seedClient(t, clients, "a@example.com")
	ctx := context.Background()

	_, _ = svc.AddDocument(ctx, c.ID, ports.AddDocumentInput{URL: "https://files.example/1", Name: "Retainer"})
	got, err := svc.AddDocument(ctx, c.ID, ports.AddDocumentInput{URL: "https://files.example/2", Name: "NDA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Documents) != 2 || got.Documents[1].Name != "NDA" {
		t.Fatalf("documents not appended in order: %+v", got.Documents)
	}
	if !got.Documents[1].UploadedAt.Equal(fixedNow) {
		t.Errorf("uploaded_at = %v", got.Documents[1].UploadedAt)
	}
}

func TestClientService_AddDocument_Concurrent(t *testing.T) {
	svc, clients, _ := newTestClientService(nil)
	c := seedClient(t, clients, "a@example.com")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.AddDocument(context.Background(), c.ID, ports.AddDocumentInput{URL: "https://files.example/x", Name: "doc"})
		}()
	}
	wg.Wait()

	got, _ := clients.FindByID(context.Background(), c.ID)
	if len(got.Documents) != 20 {
		t.Errorf("expected 20 documents, got %d", len(got.Documents))
	}
}

func TestClientService_AddDocument_UnknownClient(t *testing.T) {
	svc, _, _ := newTestClientService(nil)

	_, err := svc.AddDocument(context.Background(), "client_missing", ports.AddDocumentInput{URL: "https://x", Name: "x"})
	if !errors.Is(err, domain.ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientService_UploadDocument(t *testing.T) {
	storage := &stubStorage{}
	svc, clients, _ := newTestClientService(storage)
	c := seedClient(t, clients, "a@example.com")

	got, err := svc.UploadDocument(context.Background(), c.ID, ports.UploadDocumentInput{
		Filename:    "../signed retainer.pdf",
		ContentType: "application/pdf",
		Size:        5,
		Body:        bytes.NewReader([]byte("%PDF-")),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(storage.keys) != 1 {
		t.Fatalf("expected one stored object, got %d", len(storage.keys))
	}
	key := storage.keys[0]
	if !strings.HasPrefix(key, "clients/"+c.ID+"/") || !strings.HasSuffix(key, "-signed_retainer.pdf") {
		t.Errorf("unexpected object key %q", key)
	}
	doc := got.Documents[0]
	if doc.Name != "signed_retainer.pdf" || doc.URL != "https://files.example/"+key {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestClientService_UploadDocument_NoStorage(t *testing.T) {
	svc, clients, _ := newTestClientService(nil)
	c := seedClient(t, clients, "a@example.com")

	_, err := svc.UploadDocument(context.Background(), c.ID, ports.UploadDocumentInput{Filename: "a.pdf", Size: 1, Body: strings.NewReader("a")})
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}
