// Package admin exposes the superuser management surface: user accounts,
// platform statistics and language configuration.
package admin

import (
	"time"

	"lingua/internal/user"
)

// Roles presented on the admin surface. Stored as the superuser flag.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserView is the admin-facing projection of an account.
type UserView struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name,omitempty"`
	Role              string    `json:"role"`
	Active            bool      `json:"is_active"`
	NativeLanguage    string    `json:"native_language,omitempty"`
	LearningLanguages []string  `json:"learning_languages"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UserPage is the paginated user listing envelope.
type UserPage struct {
	Users []UserView `json:"users"`
	Total int64      `json:"total"`
	Skip  int        `json:"skip"`
	Limit int        `json:"limit"`
}

// UserStats carries per-user usage counters shown on the detail view.
type UserStats struct {
	SessionCount    int64 `json:"session_count"`
	TotalTokens30d  int64 `json:"total_tokens_30d"`
	TokenUsageCount int64 `json:"token_usage_count"`
}

// UserDetail is the detail view: the account plus its usage counters.
type UserDetail struct {
	UserView
	Stats UserStats `json:"stats"`
}

// UserUpdateRequest carries the fields an admin may change.
type UserUpdateRequest struct {
	Email             *string   `json:"email"`
	FullName          *string   `json:"full_name"`
	Role              *string   `json:"role"`
	Active            *bool     `json:"is_active"`
	NativeLanguage    *string   `json:"native_language"`
	LearningLanguages *[]string `json:"learning_languages"`
}

// Overview is the platform statistics rollup.
type Overview struct {
	Users     user.Stats       `json:"users"`
	Sessions  SessionStats     `json:"sessions"`
	Tokens    TokenStats       `json:"tokens"`
	Languages map[string]int64 `json:"languages"`
}

type SessionStats struct {
	Total int64 `json:"total"`
}

type TokenStats struct {
	TotalLast30Days int64 `json:"total_last_30_days"`
	UsageCount30d   int64 `json:"usage_count_30d"`
}

// LanguageRequest is the create/update payload for languages.
type LanguageRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

func toUserView(u *user.User) UserView {
	role := RoleUser
	if u.Superuser {
		role = RoleAdmin
	}
	return UserView{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		FullName:          u.FullName,
		Role:              role,
		Active:            u.Active,
		NativeLanguage:    u.PreferredLanguage,
		LearningLanguages: u.LearningLanguages,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
