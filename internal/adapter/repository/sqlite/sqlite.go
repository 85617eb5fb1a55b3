// Package sqlite stores URL records in an SQLite database.
// It is meant for single-instance deployments and local development.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/vadimbarashkov/url-shorter/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS urls (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    full_url        TEXT      NOT NULL UNIQUE,
    short_url       TEXT      NOT NULL UNIQUE,
    expiration_time TIMESTAMP NOT NULL
);`

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	const op = "adapter.repository.sqlite.Open"

	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to apply schema: %w", op, err)
	}

	return db, nil
}

func mapSaveError(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		switch {
		case strings.Contains(sqliteErr.Error(), "urls.short_url"):
			return fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		case strings.Contains(sqliteErr.Error(), "urls.full_url"):
			return fmt.Errorf("%s: %w", op, entity.ErrDuplicateURL)
		}
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
	const op = "adapter.repository.sqlite.URLRepository.FindByFullURL"
	const query = `SELECT * FROM urls WHERE full_url = ?`

	return r.get(ctx, op, query, fullURL)
}

func (r *URLRepository) FindByShortCode(ctx context.Context, shortURL string) (*entity.URL, error) {
	const op = "adapter.repository.sqlite.URLRepository.FindByShortCode"
	const query = `SELECT * FROM urls WHERE short_url = ?`

	return r.get(ctx, op, query, shortURL)
}

func (r *URLRepository) get(ctx context.Context, op, query, arg string) (*entity.URL, error) {
	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return url.toEntity(), nil
}

func (r *URLRepository) Save(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.sqlite.URLRepository.Save"
	const insertQuery = `INSERT INTO urls(full_url, short_url, expiration_time) VALUES (?, ?, ?)`
	const updateQuery = `UPDATE urls SET full_url = ?, short_url = ?, expiration_time = ? WHERE id = ?`
	const selectQuery = `SELECT * FROM urls WHERE id = ?`

	exp := url.ExpirationTime.UTC()
	id := url.ID

	if id == 0 {
		res, err := r.db.ExecContext(ctx, insertQuery, url.FullURL, url.ShortURL, exp)
		if err != nil {
			return nil, mapSaveError(op, err)
		}

		if id, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("%s: failed to get inserted row id: %w", op, err)
		}
	} else {
		res, err := r.db.ExecContext(ctx, updateQuery, url.FullURL, url.ShortURL, exp, id)
		if err != nil {
			return nil, mapSaveError(op, err)
		}

		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
		}
		if rowsAffected != 1 {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}
	}

	var saved urlDB

	if err := r.db.GetContext(ctx, &saved, selectQuery, id); err != nil {
		return nil, fmt.Errorf("%s: failed to read saved row: %w", op, err)
	}

	return saved.toEntity(), nil
}

func (r *URLRepository) Count(ctx context.Context) (int64, error) {
	const op = "adapter.repository.sqlite.URLRepository.Count"
	const query = `SELECT COUNT(*) FROM urls`

	var n int64

	if err := r.db.GetContext(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("%s: failed to count urls table rows: %w", op, err)
	}

	return n, nil
}
