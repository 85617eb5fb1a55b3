package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/url-shorter/internal/config"
	"github.com/vadimbarashkov/url-shorter/internal/entity"
	"github.com/vadimbarashkov/url-shorter/internal/expiry"
	"github.com/vadimbarashkov/url-shorter/internal/shortcode"
	"github.com/vadimbarashkov/url-shorter/internal/usecase"
	"github.com/vadimbarashkov/url-shorter/pkg/postgres"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/url-shorter/internal/adapter/delivery/http"
	pgrepo "github.com/vadimbarashkov/url-shorter/internal/adapter/repository/postgres"
	sqliterepo "github.com/vadimbarashkov/url-shorter/internal/adapter/repository/sqlite"
)

type urlStore interface {
	FindByFullURL(ctx context.Context, fullURL string) (*entity.URL, error)
	FindByShortCode(ctx context.Context, shortURL string) (*entity.URL, error)
	Save(ctx context.Context, url *entity.URL) (*entity.URL, error)
	Count(ctx context.Context) (int64, error)
}

type shortCodeGenerator interface {
	Generate() (string, error)
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (urlStore, func() error, error) {
	const op = "app.openStore"

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqliterepo.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		logger.Info("using sqlite storage", slog.String("path", cfg.Storage.SQLitePath))

		return sqliterepo.NewURLRepository(db), db.Close, nil
	default:
		db, err := postgres.New(
			ctx,
			cfg.Postgres.DSN(),
			postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
		}

		version, err := postgres.RunMigrations(cfg.MigrationsPath, cfg.Postgres.DSN())
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
		}

		logger.Info("using postgres storage",
			slog.String("host", cfg.Postgres.Host),
			slog.String("db", cfg.Postgres.DB),
			slog.Uint64("schema_version", uint64(version)),
		)

		return pgrepo.NewURLRepository(db), db.Close, nil
	}
}

// newGenerator builds the alias generator. The counter resumes from the number of
// stored records; collisions with aliases issued before a restart are resolved by
// the store's uniqueness constraint and the use case's retries.
func newGenerator(ctx context.Context, strategy string, store urlStore, logger *slog.Logger) (shortCodeGenerator, error) {
	const op = "app.newGenerator"

	if strategy == config.StrategyRandom {
		logger.Info("using random short codes")
		return shortcode.NewRandom(), nil
	}

	n, err := store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to seed counter: %w", op, err)
	}

	logger.Info("using counter short codes", slog.Int64("seed", n))

	return shortcode.NewCounter(uint64(n)), nil
}

func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	store, closeStore, err := openStore(ctx, cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeStore()

	gen, err := newGenerator(ctx, cfg.ShortCode.Strategy, store, logger.Logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	urlUseCase := usecase.New(cfg.ShortURLPrefix, store, gen, expiry.New())

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        delivery.NewRouter(logger, urlUseCase),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		logger.Info("starting http server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down http server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
