package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestURL_IsExpired(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		exp  time.Time
		want bool
	}{
		{name: "in the past", exp: now.Add(-time.Second), want: true},
		{name: "exactly now", exp: now, want: false},
		{name: "in the future", exp: now.AddDate(0, 0, 1), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := URL{ExpirationTime: tt.exp}

			assert.Equal(t, tt.want, url.IsExpired(now))
		})
	}
}
