package snapvault_test

import (
	"strings"
	"testing"

	"github.com/sagarc03/snapvault"
	"github.com/stretchr/testify/assert"
)

func TestIsValidPath(t *testing.T) {
	// Create a path with invalid UTF-8 (without embedding raw invalid bytes in source)
	invalidUTF8 := string([]byte{'a', 0xff, 'b'})

	tt := []struct {
		Name string
		Path string
		Want bool
	}{
		{Name: "root path", Path: "/", Want: false},
		{Name: "empty path", Path: "", Want: false},
		{Name: "leading slash", Path: "/some/path", Want: false},
		{Name: "ends with slash", Path: "some/path/", Want: false},

		{Name: "double dots segment", Path: "../", Want: false},
		{Name: "double dots in middle segment", Path: "a/../b", Want: false},
		{Name: "trailing double dots segment", Path: "a/..", Want: false},
		{Name: "double dots inside filename", Path: "u1/originals/p1/IMG..jpg", Want: true},
		{Name: "leading double dots in filename", Path: "u1/originals/p1/..draft.jpg", Want: true},

		{Name: "single dot segment", Path: "a/./b", Want: false},
		{Name: "leading dot segment", Path: "./a", Want: false},
		{Name: "single dot only", Path: ".", Want: false},

		{Name: "double slash", Path: "a//b", Want: false},

		{Name: "contains tab", Path: "some\tpath/file.jpg", Want: false},
		{Name: "contains newline", Path: "some\npath/file.jpg", Want: false},
		{Name: "contains backslash", Path: `some\path/file.jpg`, Want: false},
		{Name: "contains hash", Path: "some/path#frag", Want: false},
		{Name: "contains question mark", Path: "some/path?x=1", Want: false},
		{Name: "contains NUL", Path: "some\x00path/file.jpg", Want: false},
		{Name: "contains DEL", Path: "some\x7fpath/file.jpg", Want: false},
		{Name: "invalid utf8", Path: invalidUTF8, Want: false},

		{Name: "photo key", Path: "user-1/originals/0b5e/beach.jpg", Want: true},
		{Name: "space in filename", Path: "user-1/edited/0b5e/my beach.jpg", Want: true},
		{Name: "tilde allowed", Path: "user-1/originals/0b5e/~draft.jpg", Want: true},
		{Name: "hidden file", Path: ".hidden/file.jpg", Want: true},
		{Name: "unicode", Path: "user/originals/id/été.jpg", Want: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, snapvault.IsValidPath(tc.Path), "IsValidPath(%q)", tc.Path)
		})
	}
}

func TestIsValidFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{name: "plain", filename: "beach.jpg", want: true},
		{name: "spaces inside", filename: "my beach.jpeg", want: true},
		{name: "slash", filename: "a/b.jpg", want: false},
		{name: "leading space", filename: " beach.jpg", want: false},
		{name: "parent", filename: "..", want: false},
		{name: "current", filename: ".", want: false},
		{name: "double dots inside", filename: "IMG..jpg", want: true},
		{name: "double dots between words", filename: "a..b.jpg", want: true},
		{name: "too long", filename: strings.Repeat("a", 252) + ".jpg", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snapvault.IsValidFilename(tt.filename))
		})
	}
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "u1/originals/p1/a.jpg", snapvault.ObjectKey("u1", snapvault.VersionOriginal, "p1", "a.jpg"))
	assert.Equal(t, "u1/edited/p1/b.jpg", snapvault.ObjectKey("u1", snapvault.VersionEdited, "p1", "b.jpg"))
}
