// Package internal holds helpers shared by the metadata backends.
package internal

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/sagarc03/snapvault"
)

// TimeLayout is a fixed-width UTC layout, so text timestamps sort chronologically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// Cursor is the position after which the next page of a newest-first
// listing starts.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor encodes cursor data to a base64 string for pagination.
func EncodeCursor(createdAt time.Time, id string) string {
	data := FormatTime(createdAt) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(data))
}

// DecodeCursor decodes a pagination cursor string back to cursor data.
// Every decode failure wraps snapvault.ErrInvalidInput.
func DecodeCursor(cursor string) (Cursor, error) {
	if cursor == "" {
		return Cursor{}, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w: invalid encoding: %w", snapvault.ErrInvalidInput, err)
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return Cursor{}, fmt.Errorf("decode cursor: %w: invalid format", snapvault.ErrInvalidInput)
	}

	if parts[1] == "" {
		return Cursor{}, fmt.Errorf("decode cursor: %w: empty id", snapvault.ErrInvalidInput)
	}

	createdAt, err := ParseTime(parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w: invalid timestamp: %w", snapvault.ErrInvalidInput, err)
	}

	return Cursor{CreatedAt: createdAt, ID: parts[1]}, nil
}
