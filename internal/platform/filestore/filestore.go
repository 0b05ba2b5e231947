// Package filestore keeps the raw bytes of uploaded documents, either in a
// local directory or in a GCS bucket.
package filestore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

type Store interface {
	Save(ctx context.Context, key string, r io.Reader) error
	// Delete removes key. A missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// DocumentKey is the storage key for an uploaded document: "<id>/<base name>".
func DocumentKey(id uint, filename string) string {
	return fmt.Sprintf("%d/%s", id, path.Base(strings.ReplaceAll(filename, "\\", "/")))
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	k := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimLeft(path.Clean("/"+k), "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	for _, part := range strings.Split(strings.TrimSpace(key), "/") {
		if part == ".." {
			return "", fmt.Errorf("invalid storage key %q", key)
		}
	}
	return k, nil
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".txt"):
		return "text/plain"
	default:
		return ""
	}
}
