package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/url-shorter/internal/entity"
)

// fullURLRule accepts absolute URLs with one of the schemes a browser can follow.
const fullURLRule = "required,url,startswith=http://|startswith=https://|startswith=ftp://"

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

type urlRepository interface {
	FindByFullURL(ctx context.Context, fullURL string) (*entity.URL, error)
	FindByShortCode(ctx context.Context, shortURL string) (*entity.URL, error)
	Save(ctx context.Context, url *entity.URL) (*entity.URL, error)
}

type shortCodeGenerator interface {
	Generate() (string, error)
}

type expirationCalculator interface {
	Compute(days int, current *time.Time) time.Time
}

type URLUseCase struct {
	prefix   string
	urlRepo  urlRepository
	gen      shortCodeGenerator
	exp      expirationCalculator
	validate *validator.Validate
}

func New(prefix string, urlRepo urlRepository, gen shortCodeGenerator, exp expirationCalculator) *URLUseCase {
	return &URLUseCase{
		prefix:   prefix,
		urlRepo:  urlRepo,
		gen:      gen,
		exp:      exp,
		validate: validator.New(),
	}
}

func (uc *URLUseCase) shortURL(shortCode string) string {
	return uc.prefix + shortCode
}

func (uc *URLUseCase) validateURL(fullURL string) error {
	if err := uc.validate.Var(fullURL, fullURLRule); err != nil {
		return entity.ErrInvalidURL
	}
	return nil
}

func (uc *URLUseCase) ShortenURL(ctx context.Context, fullURL string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"
	const maxRetries = 5

	if err := uc.validateURL(fullURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err := uc.urlRepo.FindByFullURL(ctx, fullURL)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrDuplicateURL)
	}
	if !errors.Is(err, entity.ErrURLNotFound) {
		return nil, fmt.Errorf("%s: failed to look up full url: %w", op, err)
	}

	expirationTime := uc.exp.Compute(0, nil)

	for i := 0; i < maxRetries; i++ {
		alias, err := uc.gen.Generate()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		url, err := uc.urlRepo.Save(ctx, &entity.URL{
			FullURL:        fullURL,
			ShortURL:       uc.shortURL(alias),
			ExpirationTime: expirationTime,
		})
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

func (uc *URLUseCase) UpdateDestination(ctx context.Context, shortCode, fullURL string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.UpdateDestination"

	shortURL := uc.shortURL(shortCode)

	if err := uc.validateURL(fullURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	url, err := uc.urlRepo.FindByShortCode(ctx, shortURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to find url: %w", op, err)
	}

	url.FullURL = fullURL

	url, err = uc.urlRepo.Save(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to update destination: %w", op, err)
	}

	return url, nil
}

func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	url, err := uc.urlRepo.FindByShortCode(ctx, uc.shortURL(shortCode))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

func (uc *URLUseCase) ExtendExpiration(ctx context.Context, shortCode string, days int) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ExtendExpiration"

	url, err := uc.urlRepo.FindByShortCode(ctx, uc.shortURL(shortCode))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to find url: %w", op, err)
	}

	url.ExpirationTime = uc.exp.Compute(days, &url.ExpirationTime)

	url, err = uc.urlRepo.Save(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to extend expiration: %w", op, err)
	}

	return url, nil
}
