package domain

import "github.com/google/uuid"

const (
	RoleAuthenticated = "authenticated"
	RoleServiceRole   = "service_role"
	RoleAnon          = "anon"
)

// Account is the authenticated seller an operation runs on behalf of.
type Account struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
	Role  string    `json:"role"`
}

func (a *Account) IsAuthenticated() bool {
	return a != nil && a.ID != uuid.Nil
}

func (a *Account) HasRole(role string) bool {
	return a != nil && a.Role == role
}
