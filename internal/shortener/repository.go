package shortener

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("url not found")
	ErrInvalidCode  = errors.New("invalid short code")
	ErrInvalidURL   = errors.New("invalid url")
	ErrCodeConflict = errors.New("short code already taken")
	ErrDuplicateURL = errors.New("url already shortened")
	// ErrRejected marks writes the store refuses for the values themselves,
	// so retrying them cannot succeed.
	ErrRejected = errors.New("value rejected by store")
)

// Repository is the system of record for URL mappings.
type Repository interface {
	// Save persists a new mapping and fills in its ID and CreatedAt.
	// Returns ErrCodeConflict if the code is taken and ErrDuplicateURL if the
	// long URL was stored by someone else since the caller last looked.
	Save(ctx context.Context, shortURL *ShortURL) error
	GetByCode(ctx context.Context, code Code) (*ShortURL, error)
	GetByOriginalURL(ctx context.Context, originalURL string) (*ShortURL, error)
}

// StatsRepository exposes the read-only aggregate queries.
type StatsRepository interface {
	Count(ctx context.Context) (int64, error)
	Latest(ctx context.Context, limit int) ([]ShortURL, error)
}

// ClickRepository holds the writes behind click logging.
type ClickRepository interface {
	URLIDByCode(ctx context.Context, code Code) (int64, error)
	// GetOrInsertDimension returns the id of the row holding value, creating
	// it if needed. Concurrent callers for the same value get the same id.
	GetOrInsertDimension(ctx context.Context, dim Dimension, value string) (int64, error)
	InsertClick(ctx context.Context, click ClickEvent) error
}

// ClickSessions runs fn against a ClickRepository bound to one connection
// that is released when fn returns.
type ClickSessions interface {
	Session(ctx context.Context, fn func(ClickRepository) error) error
}
