package user

import "context"

// Store abstracts user persistence so the service can run against the
// in-memory implementation in tests and Mongo in production.
type Store interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Search matches username, email or full name case-insensitively. An
	// empty query returns everyone. The second result is the total match
	// count before paging.
	Search(ctx context.Context, query string, skip, limit int) ([]*User, int64, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error

	Stats(ctx context.Context) (Stats, error)
	// LearningLanguageCounts returns how many users study each language code.
	LearningLanguageCounts(ctx context.Context) (map[string]int64, error)
	// CountUsingLanguage counts users with code as preferred or learning
	// language. Admin language deletion is blocked while this is non-zero.
	CountUsingLanguage(ctx context.Context, code string) (int64, error)
}
