package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// fixedNow is the clock used by every service under test.
var fixedNow = time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type idSeq struct {
	prefix string
	n      int
}

func (s *idSeq) next() string {
	s.n++
	return fmt.Sprintf("%s_%03d", s.prefix, s.n)
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

type stubUserRepo struct {
	mu    sync.Mutex
	seq   idSeq
	users []*domain.User
}

func newStubUserRepo() *stubUserRepo { return &stubUserRepo{seq: idSeq{prefix: "user"}} }

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Identity == u.Identity {
			return domain.ErrIdentityTaken
		}
		if x.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	u.ID = r.seq.next()
	clone := *u
	r.users = append(r.users, &clone)
	return nil
}

func (r *stubUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *stubUserRepo) FindByIdentity(_ context.Context, identity string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Identity == identity })
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	var out []*domain.User
	for _, id := range ids {
		if u, err := r.FindByID(context.Background(), id); err == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, p ports.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID != id {
			continue
		}
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.Email != nil {
			u.Email = *p.Email
		}
		if p.Role != nil {
			u.Role = *p.Role
		}
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

type stubClientRepo struct {
	mu         sync.Mutex
	seq        idSeq
	clients    []*domain.Client
	addCaseErr error
}

func newStubClientRepo() *stubClientRepo { return &stubClientRepo{seq: idSeq{prefix: "client"}} }

func cloneClient(c *domain.Client) *domain.Client {
	clone := *c
	clone.Documents = append([]domain.Document{}, c.Documents...)
	clone.CaseIDs = append([]string{}, c.CaseIDs...)
	return &clone
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.clients {
		if x.Email == c.Email {
			return domain.ErrEmailTaken
		}
	}
	c.ID = r.seq.next()
	r.clients = append(r.clients, cloneClient(c))
	return nil
}

func (r *stubClientRepo) get(id string) *domain.Client {
	for _, c := range r.clients {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.get(id); c != nil {
		return cloneClient(c), nil
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubClientRepo) FindByEmail(_ context.Context, email string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Email == email {
			return cloneClient(c), nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubClientRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Client
	for _, id := range ids {
		if c := r.get(id); c != nil {
			out = append(out, cloneClient(c))
		}
	}
	return out, nil
}

func (r *stubClientRepo) List(_ context.Context, f ports.ClientFilter) ([]*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Client{}
	for _, c := range r.clients {
		if inRange(c.CreatedAt, f.CreatedFrom, f.CreatedTo) {
			out = append(out, cloneClient(c))
		}
	}
	return out, nil
}

func (r *stubClientRepo) Update(_ context.Context, id string, p ports.ClientPatch) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.get(id)
	if c == nil {
		return nil, domain.ErrClientNotFound
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	return cloneClient(c), nil
}

func (r *stubClientRepo) AppendDocument(_ context.Context, id string, doc domain.Document) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.get(id)
	if c == nil {
		return nil, domain.ErrClientNotFound
	}
	c.Documents = append(c.Documents, doc)
	return cloneClient(c), nil
}

func (r *stubClientRepo) AddCase(_ context.Context, clientID, caseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addCaseErr != nil {
		return r.addCaseErr
	}
	c := r.get(clientID)
	if c == nil {
		return domain.ErrClientNotFound
	}
	if !c.HasCase(caseID) {
		c.CaseIDs = append(c.CaseIDs, caseID)
	}
	return nil
}

type stubCaseRepo struct {
	mu    sync.Mutex
	seq   idSeq
	cases []*domain.Case
}

func newStubCaseRepo() *stubCaseRepo { return &stubCaseRepo{seq: idSeq{prefix: "case"}} }

func cloneCase(c *domain.Case) *domain.Case {
	clone := *c
	clone.Updates = append([]domain.CaseUpdate{}, c.Updates...)
	return &clone
}

func (r *stubCaseRepo) get(id string) *domain.Case {
	for _, c := range r.cases {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (r *stubCaseRepo) Create(_ context.Context, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.seq.next()
	r.cases = append(r.cases, cloneCase(c))
	return nil
}

func (r *stubCaseRepo) FindByID(_ context.Context, id string) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.get(id); c != nil {
		return cloneCase(c), nil
	}
	return nil, domain.ErrCaseNotFound
}

func (r *stubCaseRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Case
	for _, id := range ids {
		if c := r.get(id); c != nil {
			out = append(out, cloneCase(c))
		}
	}
	return out, nil
}

func (r *stubCaseRepo) List(_ context.Context, f ports.CaseFilter) ([]*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Case{}
	for _, c := range r.cases {
		if f.ClientID != "" && c.ClientID != f.ClientID {
			continue
		}
		if f.AssociateID != "" && c.AssociateID != f.AssociateID {
			continue
		}
		if inRange(c.CreatedAt, f.CreatedFrom, f.CreatedTo) {
			out = append(out, cloneCase(c))
		}
	}
	return out, nil
}

func (r *stubCaseRepo) Update(_ context.Context, id string, p ports.CasePatch) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.get(id)
	if c == nil {
		return nil, domain.ErrCaseNotFound
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Status != nil {
		c.Status = *p.Status
		c.ClosedAt = p.ClosedAt
	}
	return cloneCase(c), nil
}

func (r *stubCaseRepo) AppendUpdate(_ context.Context, id string, u domain.CaseUpdate) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.get(id)
	if c == nil {
		return nil, domain.ErrCaseNotFound
	}
	c.Updates = append(c.Updates, u)
	return cloneCase(c), nil
}

func (r *stubCaseRepo) MarkLinked(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.get(id)
	if c == nil {
		return domain.ErrCaseNotFound
	}
	c.LinkState = domain.LinkLinked
	return nil
}

func (r *stubCaseRepo) FindPendingLinks(_ context.Context, before time.Time) ([]*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Case
	for _, c := range r.cases {
		if c.LinkState == domain.LinkPending && c.CreatedAt.Before(before) {
			out = append(out, cloneCase(c))
		}
	}
	return out, nil
}

type stubInvoiceRepo struct {
	mu       sync.Mutex
	seq      idSeq
	invoices []*domain.Invoice
}

func newStubInvoiceRepo() *stubInvoiceRepo { return &stubInvoiceRepo{seq: idSeq{prefix: "inv"}} }

func (r *stubInvoiceRepo) Create(_ context.Context, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv.ID = r.seq.next()
	clone := *inv
	r.invoices = append(r.invoices, &clone)
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id string) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.ID == id {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, domain.ErrInvoiceNotFound
}

func (r *stubInvoiceRepo) List(_ context.Context, f ports.InvoiceFilter) ([]*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Invoice{}
	for _, inv := range r.invoices {
		if f.ClientID != "" && inv.ClientID != f.ClientID {
			continue
		}
		if f.CaseID != "" && inv.CaseID != f.CaseID {
			continue
		}
		if inRange(inv.CreatedAt, f.CreatedFrom, f.CreatedTo) {
			clone := *inv
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) UpdateStatus(_ context.Context, id string, status domain.InvoiceStatus, paidAt *time.Time) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.ID == id {
			inv.Status = status
			inv.PaidAt = paidAt
			clone := *inv
			return &clone, nil
		}
	}
	return nil, domain.ErrInvoiceNotFound
}

type stubAttendanceRepo struct {
	mu      sync.Mutex
	seq     idSeq
	records []*domain.Attendance
}

func newStubAttendanceRepo() *stubAttendanceRepo { return &stubAttendanceRepo{seq: idSeq{prefix: "att"}} }

func (r *stubAttendanceRepo) Create(_ context.Context, a *domain.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.seq.next()
	clone := *a
	r.records = append(r.records, &clone)
	return nil
}

func (r *stubAttendanceRepo) List(_ context.Context, f ports.AttendanceFilter) ([]*domain.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Attendance{}
	for _, a := range r.records {
		if f.UserID != "" && a.UserID != f.UserID {
			continue
		}
		if inRange(a.Timestamp, f.From, f.To) {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// ---------------------------------------------------------------------------
// Outbound stubs
// ---------------------------------------------------------------------------

type stubNotifier struct {
	mu   sync.Mutex
	sent []ports.EmailMessage
}

func (n *stubNotifier) Enqueue(msg ports.EmailMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

type stubMailer struct {
	err  error
	sent []ports.EmailMessage
}

func (m *stubMailer) Send(_ context.Context, msg ports.EmailMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// recordingRenderer captures the document instead of encoding it.
type recordingRenderer struct {
	ext  string
	docs []domain.ReportDocument
}

func (r *recordingRenderer) Render(doc domain.ReportDocument) ([]byte, error) {
	r.docs = append(r.docs, doc)
	return []byte(doc.Title), nil
}

func (r *recordingRenderer) ContentType() string { return "application/x-" + r.ext }
func (r *recordingRenderer) Extension() string   { return r.ext }

func (r *recordingRenderer) last() domain.ReportDocument {
	return r.docs[len(r.docs)-1]
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var (
	adminCaller     = domain.Caller{Subject: "sub-admin", UserID: "user_admin", Role: domain.RoleAdmin}
	associateCaller = domain.Caller{Subject: "sub-assoc", UserID: "user_assoc", Role: domain.RoleAssociate}
	anonymousCaller = domain.Caller{Subject: "sub-new"}
)

func seedClient(t interface{ Fatalf(string, ...any) }, repo *stubClientRepo, email string) *domain.Client {
	c := &domain.Client{Name: "Client " + email, Email: email, Phone: "555-0100", CreatedAt: fixedNow}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}
