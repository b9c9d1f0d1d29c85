package internal_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/database/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCursor_DecodeCursor_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		createdAt time.Time
		id        string
	}{
		{
			name:      "uuid",
			createdAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			id:        "0b5e3a52-1f43-4f5e-9f3e-5d7b2b9a8c11",
		},
		{
			name:      "nanosecond precision",
			createdAt: time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC),
			id:        "p1",
		},
		{
			name:      "id with pipe character",
			createdAt: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
			id:        "a|b",
		},
		{
			name:      "non utc input",
			createdAt: time.Date(2024, 3, 10, 8, 0, 0, 0, time.FixedZone("CET", 3600)),
			id:        "p2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			encoded := internal.EncodeCursor(tt.createdAt, tt.id)
			assert.NotEmpty(t, encoded, "encoded cursor should not be empty")

			decoded, err := internal.DecodeCursor(encoded)
			require.NoError(t, err)

			assert.True(t, tt.createdAt.Equal(decoded.CreatedAt),
				"createdAt mismatch: expected %v, got %v", tt.createdAt, decoded.CreatedAt)
			assert.Equal(t, tt.id, decoded.ID)
		})
	}
}

func TestDecodeCursor_EmptyString(t *testing.T) {
	t.Parallel()

	cursor, err := internal.DecodeCursor("")
	require.NoError(t, err)

	assert.True(t, cursor.CreatedAt.IsZero(), "empty cursor should return zero time")
	assert.Empty(t, cursor.ID, "empty cursor should return empty id")
}

func TestDecodeCursor_Invalid(t *testing.T) {
	t.Parallel()

	encode := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name        string
		cursor      string
		errContains string
	}{
		{name: "not base64", cursor: "not-valid-base64!!!", errContains: "invalid encoding"},
		{name: "missing pipe separator", cursor: encode("2024-01-15T10:30:00.000000000Z"), errContains: "invalid format"},
		{name: "empty id after pipe", cursor: encode("2024-01-15T10:30:00.000000000Z|"), errContains: "empty id"},
		{name: "invalid timestamp", cursor: encode("not-a-timestamp|p1"), errContains: "invalid timestamp"},
		{name: "rfc3339 without fixed width", cursor: encode("2024-01-15T10:30:00Z|p1"), errContains: "invalid timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := internal.DecodeCursor(tt.cursor)
			require.Error(t, err)
			assert.ErrorIs(t, err, snapvault.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestFormatTime_SortsChronologically(t *testing.T) {
	t.Parallel()

	earlier := internal.FormatTime(time.Date(2024, 1, 1, 0, 0, 0, 900000000, time.UTC))
	later := internal.FormatTime(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC))
	assert.Less(t, earlier, later)
	assert.Len(t, earlier, len(later))
}
