package storage

import (
	"context"
	"io"
	"path"
	"regexp"
	"strings"
)

// Uploader stores student documents and returns the path recorded on the student.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SecureName reduces a client-supplied filename to a safe base name.
func SecureName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}
