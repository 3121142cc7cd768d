package handler

import (
	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

// Response-only shapes for expanded reads. Embedded domain records keep their
// own JSON fields; the outer fields add the resolved references.

type clientView struct {
	*domain.Client
	Cases []*domain.Case `json:"cases"`
}

type clientRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type userRef struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type caseRef struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Status domain.CaseStatus `json:"status"`
}

type caseView struct {
	*domain.Case
	Client    *clientRef `json:"client,omitempty"`
	Associate *userRef   `json:"associate,omitempty"`
}

type invoiceView struct {
	*domain.Invoice
	Client *clientRef `json:"client,omitempty"`
	Case   *caseRef   `json:"case,omitempty"`
}

type caseAcceptedResponse struct {
	Case    *domain.Case `json:"case"`
	Warning string       `json:"warning"`
}

func toClientView(v ports.ClientView) clientView {
	cases := v.Cases
	if cases == nil {
		cases = []*domain.Case{}
	}
	return clientView{Client: v.Client, Cases: cases}
}

func toCaseView(v ports.CaseView) caseView {
	return caseView{Case: v.Case, Client: toClientRef(v.Client), Associate: toUserRef(v.Associate)}
}

func toInvoiceView(v ports.InvoiceView) invoiceView {
	out := invoiceView{Invoice: v.Invoice, Client: toClientRef(v.Client)}
	if v.Case != nil {
		out.Case = &caseRef{ID: v.Case.ID, Title: v.Case.Title, Status: v.Case.Status}
	}
	return out
}

func toClientRef(c *domain.Client) *clientRef {
	if c == nil {
		return nil
	}
	return &clientRef{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func toUserRef(u *domain.User) *userRef {
	if u == nil {
		return nil
	}
	return &userRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// mapAll converts every element of in with fn, returning an empty (not nil)
// slice so lists always encode as JSON arrays.
func mapAll[In, Out any](in []In, fn func(In) Out) []Out {
	out := make([]Out, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
