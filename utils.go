package snapvault

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidPath validates that a path string meets the requirements for an object key.
// It checks that the path:
//   - is relative and non-empty
//   - has no empty, "." or ".." segments (so no leading, trailing or doubled "/")
//   - does not contain invalid characters: \ ? #
//   - is valid UTF-8
//   - does not contain null bytes, control characters (< 0x20) or DEL (0x7f)
//
// Dots inside a segment are fine ("IMG..jpg"). Plain spaces are allowed since
// object keys embed user supplied filenames.
func IsValidPath(p string) bool {
	if p == "" {
		return false
	}

	for _, segment := range strings.Split(p, "/") {
		switch segment {
		case "", ".", "..":
			return false
		}
	}

	if strings.ContainsAny(p, `\?#`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f || (r != ' ' && unicode.IsSpace(r)) {
			return false
		}
	}

	return true
}

// IsValidFilename reports whether name can be used as the last segment of an
// object key.
func IsValidFilename(name string) bool {
	if strings.TrimSpace(name) != name || len(name) > 255 {
		return false
	}
	if strings.Contains(name, "/") {
		return false
	}
	return IsValidPath(name)
}

// ObjectKey builds the object key of a photo version:
// {user}/{originals|edited}/{photo}/{filename}.
func ObjectKey(userID string, v VersionType, photoID, filename string) string {
	folder := "originals"
	if v == VersionEdited {
		folder = "edited"
	}
	return userID + "/" + folder + "/" + photoID + "/" + filename
}
