// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL record, along with
// the errors surfaced by the shortening flows.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrInvalidURL is returned when a full URL fails syntax validation.
	ErrInvalidURL = errors.New("please enter a valid url")
	// ErrDuplicateURL is returned when a record for the full URL already exists.
	ErrDuplicateURL = errors.New("url already exists")
	// ErrURLNotFound is returned when no record matches the specified short URL.
	ErrURLNotFound = errors.New("url not found")
	// ErrShortCodeExists is returned when attempting to save a record with a short URL that already exists.
	ErrShortCodeExists = errors.New("short code exists")
)

// URL represents a shortened URL record.
type URL struct {
	ID             int64     // ID is the unique identifier of the record, assigned by the store.
	FullURL        string    // FullURL is the destination the short URL resolves to.
	ShortURL       string    // ShortURL is the configured prefix followed by the generated alias.
	ExpirationTime time.Time // ExpirationTime is the advisory moment after which the record is stale.
}

// IsExpired reports whether the record's expiration time lies before t.
func (u *URL) IsExpired(t time.Time) bool {
	return u.ExpirationTime.Before(t)
}
