package domain

import "time"

// Document is a file reference attached to a client.
type Document struct {
	URL        string    `json:"url"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Client is a customer of the firm.
type Client struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Documents []Document `json:"documents"`
	CaseIDs   []string   `json:"cases"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasCase reports whether caseID is in the client's case list.
func (c *Client) HasCase(caseID string) bool {
	for _, id := range c.CaseIDs {
		if id == caseID {
			return true
		}
	}
	return false
}
