package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDay(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"morning utc", time.Date(2024, 5, 10, 6, 0, 0, 0, time.UTC), "2024-05-10"},
		{"just before boundary", time.Date(2024, 5, 10, 17, 59, 59, 0, time.UTC), "2024-05-10"},
		{"boundary", time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC), "2024-05-11"},
		{"year rollover", time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC), "2025-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Day(tt.at).Format(time.DateOnly))
		})
	}
}

func TestStamp(t *testing.T) {
	at := time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-11 00:30:00", Stamp(at))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-01-31")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDate("2024-02-29T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2023-02-29", "2024-13-01", "tomorrow"} {
		_, ok := ParseDate(bad)
		assert.False(t, ok, bad)
	}
}
