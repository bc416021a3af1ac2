// Package blob stores photo bytes, archive submissions and asset bundles
// behind a path-keyed interface with local and S3 implementations.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNotExist is returned by Get for keys that hold no blob
var ErrNotExist = errors.New("blob does not exist")

// Store is the blob storage boundary.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is idempotent; removing a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
}

// PutOptions carries the HTTP metadata stored alongside an object.
type PutOptions struct {
	ContentType     string
	ContentEncoding string
	CacheControl    string
	ACL             string
	Headers         map[string]string
}

// CleanKey normalizes key into a slash separated relative path and rejects
// keys escaping the store root.
func CleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("invalid blob key %q: parent references are not allowed", key)
		}
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	if base == "" {
		return "/" + key
	}
	return strings.TrimSuffix(base, "/") + "/" + key
}
