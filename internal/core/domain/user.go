package domain

import "time"

// User is a firm member bound to an external identity.
type User struct {
	ID        string    `json:"id"`
	Identity  string    `json:"identity"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
