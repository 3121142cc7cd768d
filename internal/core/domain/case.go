package domain

import "time"

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

const (
	CaseOpen       CaseStatus = "open"
	CaseInProgress CaseStatus = "in_progress"
	CaseClosed     CaseStatus = "closed"
)

// CaseStatuses lists every status in display order.
var CaseStatuses = []CaseStatus{CaseOpen, CaseInProgress, CaseClosed}

func (s CaseStatus) Valid() bool {
	switch s {
	case CaseOpen, CaseInProgress, CaseClosed:
		return true
	}
	return false
}

// LinkState tracks the two-phase attachment of a case to its client.
type LinkState string

const (
	LinkPending LinkState = "pending"
	LinkLinked  LinkState = "linked"
)

// CaseUpdate is a progress note appended to a case.
type CaseUpdate struct {
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Case is a legal matter handled for a client by an associate.
type Case struct {
	ID          string       `json:"id"`
	ClientID    string       `json:"client_id"`
	AssociateID string       `json:"associate_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      CaseStatus   `json:"status"`
	Updates     []CaseUpdate `json:"updates"`
	LinkState   LinkState    `json:"link_state"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	ClosedAt    *time.Time   `json:"closed_at,omitempty"`
}

// Duration returns how long a closed case stayed open. ok is false for cases
// that are not closed.
func (c *Case) Duration() (d time.Duration, ok bool) {
	if c.Status != CaseClosed || c.ClosedAt == nil {
		return 0, false
	}
	return c.ClosedAt.Sub(c.CreatedAt), true
}
