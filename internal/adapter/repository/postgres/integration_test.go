//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vadimbarashkov/url-shorter/internal/config"
	"github.com/vadimbarashkov/url-shorter/internal/entity"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func setupPostgres(t testing.TB) config.Postgres {
	t.Helper()

	ctx := context.Background()

	pgUser := "test"
	pgPassword := "test"
	pgDB := "url_shorter"

	pgCont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDB,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgCont.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate postgres container: %v", err)
		}
	})

	pgHost, err := pgCont.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	pgPort, err := pgCont.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return config.Postgres{
		User:     pgUser,
		Password: pgPassword,
		Host:     pgHost,
		Port:     pgPort.Int(),
		DB:       pgDB,
		SSLMode:  "disable",
	}
}

func runMigrations(t testing.TB, cfg config.Postgres) {
	t.Helper()

	m, err := migrate.New("file://../../../../migrations", cfg.DSN())
	if err != nil {
		t.Fatalf("Failed to initialize migrations: %v", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			t.Fatalf("Failed to rollback migrations: %v", err)
		}
	})
}

func TestURLRepository_Integration(t *testing.T) {
	cfg := setupPostgres(t)
	runMigrations(t, cfg)

	db, err := sqlx.Connect("pgx", cfg.DSN())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	repo := NewURLRepository(db)
	ctx := context.Background()
	expiration := time.Date(2027, time.August, 14, 0, 0, 0, 0, time.UTC)

	saved, err := repo.Save(ctx, &entity.URL{
		FullURL:        "https://example.com",
		ShortURL:       "http://sho.rt/AAAAAAAA",
		ExpirationTime: expiration,
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	_, err = repo.Save(ctx, &entity.URL{
		FullURL:        "https://other.example.com",
		ShortURL:       "http://sho.rt/AAAAAAAA",
		ExpirationTime: expiration,
	})
	assert.ErrorIs(t, err, entity.ErrShortCodeExists)

	_, err = repo.Save(ctx, &entity.URL{
		FullURL:        "https://example.com",
		ShortURL:       "http://sho.rt/BAAAAAAA",
		ExpirationTime: expiration,
	})
	assert.ErrorIs(t, err, entity.ErrDuplicateURL)

	found, err := repo.FindByFullURL(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, found.ID)

	found.FullURL = "https://new-example.com"
	found.ExpirationTime = expiration.AddDate(0, 0, 5)

	updated, err := repo.Save(ctx, found)
	require.NoError(t, err)
	assert.Equal(t, "https://new-example.com", updated.FullURL)
	assert.True(t, updated.ExpirationTime.Equal(expiration.AddDate(0, 0, 5)))

	byShort, err := repo.FindByShortCode(ctx, "http://sho.rt/AAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, "https://new-example.com", byShort.FullURL)

	_, err = repo.FindByShortCode(ctx, "http://sho.rt/ZZZZZZZZ")
	assert.ErrorIs(t, err, entity.ErrURLNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
