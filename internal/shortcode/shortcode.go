// Package shortcode generates the fixed-length aliases appended to the short URL prefix.
//
// Two strategies are available. Counter encodes a process-wide monotonically
// increasing counter in base 62 and is the default. Random draws aliases from the
// same alphabet and relies on the store's uniqueness constraint to reject collisions.
package shortcode

import (
	"fmt"
	"strings"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Alphabet is the set of symbols aliases are built from. Its first symbol is the zero digit.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// Length is the number of symbols in every alias.
	Length = 8
)

const base = uint64(len(Alphabet))

// capacity is 62^8, the number of distinct aliases.
const capacity = base * base * base * base * base * base * base * base

// Encode returns the alias for n: base-62 digits, least significant first,
// right-padded with the zero digit. Values beyond the alias capacity wrap around.
func Encode(n uint64) string {
	n %= capacity

	var b strings.Builder
	b.Grow(Length)

	for n > 0 {
		b.WriteByte(Alphabet[n%base])
		n /= base
	}
	for b.Len() < Length {
		b.WriteByte(Alphabet[0])
	}

	return b.String()
}

// Decode returns the counter value an alias was encoded from.
func Decode(alias string) (uint64, error) {
	const op = "shortcode.Decode"

	var n uint64

	for i := len(alias) - 1; i >= 0; i-- {
		d := strings.IndexByte(Alphabet, alias[i])
		if d < 0 {
			return 0, fmt.Errorf("%s: invalid symbol %q at position %d", op, alias[i], i)
		}
		n = n*base + uint64(d)
	}

	return n, nil
}

// Counter generates aliases from an atomically incremented counter.
// The zero value starts at 0 and is safe for concurrent use.
type Counter struct {
	next atomic.Uint64
}

// NewCounter returns a Counter whose first alias encodes start.
func NewCounter(start uint64) *Counter {
	c := new(Counter)
	c.next.Store(start)
	return c
}

// Generate returns the alias for the current counter value and advances the counter.
func (c *Counter) Generate() (string, error) {
	return Encode(c.next.Add(1) - 1), nil
}

// Random generates aliases with nanoid over Alphabet.
type Random struct{}

// NewRandom returns a Random generator.
func NewRandom() *Random {
	return &Random{}
}

func (r *Random) Generate() (string, error) {
	const op = "shortcode.Random.Generate"

	alias, err := gonanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate alias: %w", op, err)
	}

	return alias, nil
}
