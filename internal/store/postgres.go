package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/frwrd/internal/shortener"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	programLimit        = "54000"
	dataExceptionClass  = "22"

	shortURLConstraint = "urls_short_url_key"
	longURLConstraint  = "urls_long_url_md5_key"
)

// querier is satisfied by both *pgxpool.Pool and *pgxpool.Conn.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is a PostgreSQL implementation of the shortener repositories.
type PostgresStore struct {
	queries

	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{queries: queries{db: pool}, pool: pool}
}

// Session acquires one pooled connection for the duration of fn.
func (p *PostgresStore) Session(ctx context.Context, fn func(shortener.ClickRepository) error) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return fn(queries{db: conn})
}

type queries struct {
	db querier
}

func (q queries) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	query := `
		INSERT INTO urls (short_url, long_url, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := q.db.QueryRow(ctx, query,
		string(shortURL.Code),
		shortURL.OriginalURL,
		shortURL.UserID,
	).Scan(&shortURL.ID, &shortURL.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case shortURLConstraint:
			return shortener.ErrCodeConflict
		case longURLConstraint:
			return shortener.ErrDuplicateURL
		}
	}

	return err
}

func (q queries) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	query := `
		SELECT id, short_url, long_url, user_id, created_at
		FROM urls
		WHERE short_url = $1
	`

	return scanShortURL(q.db.QueryRow(ctx, query, string(code)))
}

func (q queries) GetByOriginalURL(ctx context.Context, originalURL string) (*shortener.ShortURL, error) {
	// md5 lets the planner use the unique expression index.
	query := `
		SELECT id, short_url, long_url, user_id, created_at
		FROM urls
		WHERE md5(long_url) = md5($1) AND long_url = $1
	`

	return scanShortURL(q.db.QueryRow(ctx, query, originalURL))
}

func (q queries) Count(ctx context.Context) (int64, error) {
	var count int64

	err := q.db.QueryRow(ctx, `SELECT count(*) FROM urls`).Scan(&count)

	return count, err
}

func (q queries) Latest(ctx context.Context, limit int) ([]shortener.ShortURL, error) {
	query := `
		SELECT id, short_url, long_url, user_id, created_at
		FROM urls
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := q.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shortener.ShortURL, error) {
		var url shortener.ShortURL

		var code string

		err := row.Scan(&url.ID, &code, &url.OriginalURL, &url.UserID, &url.CreatedAt)
		url.Code = shortener.Code(code)

		return url, err
	})
}

func (q queries) URLIDByCode(ctx context.Context, code shortener.Code) (int64, error) {
	var id int64

	err := q.db.QueryRow(ctx, `SELECT id FROM urls WHERE short_url = $1`, string(code)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, shortener.ErrNotFound
	}

	return id, err
}

// GetOrInsertDimension selects then inserts. Two callers inserting the same
// value race on the unique constraint; the loser re-reads the winner's row.
func (q queries) GetOrInsertDimension(ctx context.Context, dim shortener.Dimension, value string) (int64, error) {
	if !dim.Known() {
		return 0, fmt.Errorf("unknown dimension %s.%s", dim.Table, dim.Column)
	}

	table := pgx.Identifier{dim.Table}.Sanitize()
	column := pgx.Identifier{dim.Column}.Sanitize()
	selectSQL := fmt.Sprintf(`SELECT id FROM %s WHERE %s = $1`, table, column)
	insertSQL := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1) RETURNING id`, table, column)

	var id int64

	err := q.db.QueryRow(ctx, selectSQL, value).Scan(&id)
	if err == nil {
		return id, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("select %s: %w", dim.Table, err)
	}

	err = q.db.QueryRow(ctx, insertSQL, value).Scan(&id)
	if err == nil {
		return id, nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return 0, fmt.Errorf("insert %s: %w", dim.Table, rejected(err))
	}

	if err := q.db.QueryRow(ctx, selectSQL, value).Scan(&id); err != nil {
		return 0, fmt.Errorf("re-read %s after conflict: %w", dim.Table, err)
	}

	return id, nil
}

func (q queries) InsertClick(ctx context.Context, click shortener.ClickEvent) error {
	query := `
		INSERT INTO clicks (url_id, ip_address_id, hostname_id, clicked_at)
		VALUES ($1, $2, $3, $4)
	`

	clickedAt := click.ClickedAt
	if clickedAt.IsZero() {
		clickedAt = time.Now()
	}

	if _, err := q.db.Exec(ctx, query, click.URLID, click.IPAddressID, click.HostnameID, clickedAt); err != nil {
		return rejected(err)
	}

	return nil
}

// rejected tags errors caused by the values written, such as a value too
// long for its index or a dangling foreign key, with shortener.ErrRejected.
func rejected(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	if strings.HasPrefix(pgErr.Code, dataExceptionClass) ||
		pgErr.Code == foreignKeyViolation ||
		pgErr.Code == programLimit {
		return fmt.Errorf("%w: %w", shortener.ErrRejected, err)
	}

	return err
}

func scanShortURL(row pgx.Row) (*shortener.ShortURL, error) {
	var url shortener.ShortURL

	var code string

	err := row.Scan(&url.ID, &code, &url.OriginalURL, &url.UserID, &url.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	url.Code = shortener.Code(code)

	return &url, nil
}

// Compile-time checks.
var (
	_ shortener.Repository      = (*PostgresStore)(nil)
	_ shortener.StatsRepository = (*PostgresStore)(nil)
	_ shortener.ClickRepository = (*PostgresStore)(nil)
	_ shortener.ClickSessions   = (*PostgresStore)(nil)
)
