package model

import "time"

type User struct {
	ID                     string    `json:"id"`
	Subject                string    `json:"subject"`
	Email                  string    `json:"email"`
	Name                   string    `json:"name"`
	AvatarURL              string    `json:"avatar_url"`
	TodosCreatedCount      int       `json:"todos_created_count"`
	CategoriesCreatedCount int       `json:"categories_created_count"`
	TeamsCreatedCount      int       `json:"teams_created_count"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Principal is the authenticated caller as supplied by the external identity
// provider, resolved to a local user row by the auth middleware.
type Principal struct {
	UserID string
	Email  string
}
