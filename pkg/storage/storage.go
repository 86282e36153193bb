package storage

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// ObjectStorage persists an uploaded file and returns a public URL for it.
type ObjectStorage interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName reduces name to a file name without directories or unusual characters.
func SafeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "upload"
	}
	return base
}
