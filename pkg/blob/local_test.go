package blob

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStoreFs(afero.NewMemMapFs(), "/media/")

	key := "galleries/photos/2024/05/01/a.png"
	data := []byte("not really a png")
	if err := s.Put(ctx, key, bytes.NewReader(data), int64(len(data)), PutOptions{ContentType: "image/png"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	exists, err := s.Exists(ctx, key)
	if err != nil || !exists {
		t.Fatalf("Expected blob to exist, got %v (%v)", exists, err)
	}

	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get returned %q, expected %q", got, data)
	}

	if url := s.URL(key); url != "/media/"+key {
		t.Errorf("URL = %q", url)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("Deleting a missing blob should be a no-op, got %v", err)
	}
	if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"galleries/photos/a.png", "galleries/photos/a.png", false},
		{"/leading/slash.png", "leading/slash.png", false},
		{"win\\style\\path.png", "win/style/path.png", false},
		{"../escape.png", "", true},
		{"a/../../b", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := CleanKey(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("CleanKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("CleanKey(%q) = %q, expected %q", tt.input, got, tt.want)
		}
	}
}

func TestPutObjectOptions(t *testing.T) {
	opts := putObjectOptions(PutOptions{
		ContentType:     "text/css",
		ContentEncoding: "gzip",
		ACL:             "public-read",
		Headers:         map[string]string{"cache-control": "max-age=60", "Expires": "Thu, 01 Jan 2026 00:00:00 GMT"},
	})

	if opts.CacheControl != "max-age=60" {
		t.Errorf("CacheControl = %q", opts.CacheControl)
	}
	if opts.UserMetadata["x-amz-acl"] != "public-read" {
		t.Errorf("Expected ACL metadata, got %v", opts.UserMetadata)
	}
	if opts.UserMetadata["Expires"] == "" {
		t.Errorf("Expected Expires header to be forwarded, got %v", opts.UserMetadata)
	}
}
