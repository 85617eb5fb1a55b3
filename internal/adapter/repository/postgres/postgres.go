package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/url-shorter/internal/entity"
)

const (
	uniqueViolationErrCode = "23505"

	shortURLConstraint = "urls_short_url_key"
	fullURLConstraint  = "urls_full_url_key"
)

// uniqueViolation returns the name of the violated constraint, if err is a unique violation.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func mapSaveError(op string, err error) error {
	if constraint, ok := uniqueViolation(err); ok {
		switch constraint {
		case shortURLConstraint:
			return fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		case fullURLConstraint:
			return fmt.Errorf("%s: %w", op, entity.ErrDuplicateURL)
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return fmt.Errorf("%s: failed to save urls table row: %w", op, err)
}

type urlDB struct {
	ID             int64     `db:"id"`
	FullURL        string    `db:"full_url"`
	ShortURL       string    `db:"short_url"`
	ExpirationTime time.Time `db:"expiration_time"`
}

func (u *urlDB) toEntity() *entity.URL {
	return &entity.URL{
		ID:             u.ID,
		FullURL:        u.FullURL,
		ShortURL:       u.ShortURL,
		ExpirationTime: u.ExpirationTime,
	}
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

func (r *URLRepository) FindByFullURL(ctx context.Context, fullURL string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.FindByFullURL"
	const query = `SELECT * FROM urls WHERE full_url = $1`

	return r.get(ctx, op, query, fullURL)
}

func (r *URLRepository) FindByShortCode(ctx context.Context, shortURL string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.FindByShortCode"
	const query = `SELECT * FROM urls WHERE short_url = $1`

	return r.get(ctx, op, query, shortURL)
}

func (r *URLRepository) get(ctx context.Context, op, query string, arg string) (*entity.URL, error) {
	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return url.toEntity(), nil
}

// Save inserts url when it has no ID yet and updates the existing row otherwise.
func (r *URLRepository) Save(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.Save"
	const insertQuery = `INSERT INTO urls(full_url, short_url, expiration_time) VALUES ($1, $2, $3) RETURNING *`
	const updateQuery = `UPDATE urls SET full_url = $1, short_url = $2, expiration_time = $3 WHERE id = $4 RETURNING *`

	var (
		saved urlDB
		err   error
	)

	if url.ID == 0 {
		err = r.db.GetContext(ctx, &saved, insertQuery, url.FullURL, url.ShortURL, url.ExpirationTime)
	} else {
		err = r.db.GetContext(ctx, &saved, updateQuery, url.FullURL, url.ShortURL, url.ExpirationTime, url.ID)
	}
	if err != nil {
		return nil, mapSaveError(op, err)
	}

	return saved.toEntity(), nil
}

// Count returns the number of stored records.
func (r *URLRepository) Count(ctx context.Context) (int64, error) {
	const op = "adapter.repository.postgres.URLRepository.Count"
	const query = `SELECT COUNT(*) FROM urls`

	var n int64

	if err := r.db.GetContext(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("%s: failed to count urls table rows: %w", op, err)
	}

	return n, nil
}
