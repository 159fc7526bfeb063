// Package user implements account registration, profiles and the queries the
// admin surface needs over the user collection.
package user

import "time"

// User is the account document. The password hash never leaves the service
// boundary.
type User struct {
	ID                string    `json:"id" bson:"-"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name,omitempty"`
	HashedPassword    string    `json:"-"`
	Active            bool      `json:"is_active"`
	Superuser         bool      `json:"is_superuser"`
	PreferredLanguage string    `json:"preferred_language,omitempty"`
	LearningLanguages []string  `json:"learning_languages"`
	ProfilePicture    string    `json:"profile_picture,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateRequest is the public registration payload.
type CreateRequest struct {
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	Password          string   `json:"password"`
	FullName          string   `json:"full_name"`
	PreferredLanguage string   `json:"preferred_language"`
	LearningLanguages []string `json:"learning_languages"`
}

// UpdateRequest carries optional profile changes. Nil fields are left
// untouched.
type UpdateRequest struct {
	Email             *string   `json:"email"`
	FullName          *string   `json:"full_name"`
	Active            *bool     `json:"is_active"`
	Superuser         *bool     `json:"is_superuser"`
	PreferredLanguage *string   `json:"preferred_language"`
	LearningLanguages *[]string `json:"learning_languages"`
	ProfilePicture    *string   `json:"profile_picture"`
}

// Stats aggregates platform-wide user numbers for the admin overview.
type Stats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Admins   int64 `json:"admins"`
	Inactive int64 `json:"inactive"`
}
