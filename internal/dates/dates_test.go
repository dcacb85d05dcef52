package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

// TestParse_Absolute verifies the rendered date formats of the wiki
func TestParse_Absolute(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"Jan 5, 2023", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"  2023-01-05  ", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"2023-01-05 10:20:30", time.Date(2023, 1, 5, 10, 20, 30, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

// TestParse_Relative verifies recent-edit phrases resolve against now
func TestParse_Relative(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"5 minutes ago", now.Add(-5 * time.Minute)},
		{"an hour ago", now.Add(-time.Hour)},
		{"2 days ago", now.AddDate(0, 0, -2)},
		{"3 weeks ago", now.AddDate(0, 0, -21)},
		{"1 month ago", now.AddDate(0, -1, 0)},
		{"just now", now},
		{"Today", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"Yesterday at 3:15 PM", time.Date(2024, 3, 9, 15, 15, 0, 0, time.UTC)},
		{"today at 09:05", time.Date(2024, 3, 10, 9, 5, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

// TestParse_Errors verifies empty and garbage input fail with sentinels
func TestParse_Errors(t *testing.T) {
	_, err := Parse("   ", now)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("Owned by Jane", now)
	assert.ErrorIs(t, err, ErrUnrecognized)
	assert.Contains(t, err.Error(), "Owned by Jane")

	_, err = Parse("yesterday at lunch", now)
	assert.ErrorIs(t, err, ErrUnrecognized)
}
