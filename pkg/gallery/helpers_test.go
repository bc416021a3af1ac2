package gallery

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	config "github.com/mwantia/wind/internal/config/server"
	"github.com/mwantia/wind/pkg/blob"
	"github.com/mwantia/wind/pkg/db/models"
	"github.com/mwantia/wind/pkg/db/store"
	"github.com/mwantia/wind/pkg/log"
)

var fixedNow = time.Date(2024, time.March, 9, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	svc     *Service
	store   *store.SQLiteStore
	photos  *blob.LocalStore
	scratch *blob.LocalStore
}

func testConfig() config.GalleryServerConfig {
	return config.GalleryServerConfig{
		MaxTitleLength:   120,
		ReservedPrefixes: []string{"__MACOSX"},
		PhotoPrefix:      "galleries/photos",
		ArchivePrefix:    "galleries/archives",
	}
}

func setupService(t *testing.T, cfg config.GalleryServerConfig) *testEnv {
	t.Helper()

	st, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "gallery.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	ctx := context.Background()
	if err := st.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect store: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	env := &testEnv{
		store:   st,
		photos:  blob.NewLocalStoreFs(afero.NewMemMapFs(), "/media/"),
		scratch: blob.NewLocalStoreFs(afero.NewMemMapFs(), ""),
	}
	env.svc = newTestService(cfg, st, env.photos, env.scratch)
	return env
}

func newTestService(cfg config.GalleryServerConfig, st store.GalleryStore, photos, scratch blob.Store) *Service {
	return newLoggedService(cfg, st, photos, scratch, log.NewNopLogger())
}

func newLoggedService(cfg config.GalleryServerConfig, st store.GalleryStore, photos, scratch blob.Store, logger log.LoggerService) *Service {
	svc := NewService(cfg, st, photos, scratch, logger)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func bufferLogger(buf *bytes.Buffer) log.LoggerService {
	return log.NewWriterLogger("test", config.LogServerConfig{Level: "DEBUG"}, buf)
}

type member struct {
	name   string
	data   []byte
	method uint16
}

func buildArchive(t *testing.T, members ...member) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, m := range members {
		method := m.method
		if method == 0 {
			method = zip.Deflate
		}
		f, err := w.CreateHeader(&zip.FileHeader{Name: m.name, Method: method})
		if err != nil {
			t.Fatalf("Failed to add %s: %v", m.name, err)
		}
		if _, err := f.Write(m.data); err != nil {
			t.Fatalf("Failed to write %s: %v", m.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}
	return buf.Bytes()
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 13), 80, 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatalf("Failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// failingDelete wraps a blob store and refuses to delete anything.
type failingDelete struct {
	blob.Store
}

func (f failingDelete) Delete(ctx context.Context, key string) error {
	return errors.New("delete refused")
}

// pngHeader returns a PNG holding only a signature, an IHDR chunk claiming
// w x h RGB pixels and IEND. The header parses; the pixel data does not exist.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(typ string, data []byte) {
		binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(typ), data...)
		buf.Write(body)
		binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 2 // truecolor
	chunk("IHDR", ihdr)
	chunk("IEND", nil)

	return buf.Bytes()
}

// limitedDelete allows the first n deletes and fails every later one.
type limitedDelete struct {
	blob.Store
	n int
}

func (l *limitedDelete) Delete(ctx context.Context, key string) error {
	if l.n <= 0 {
		return errors.New("blob store unavailable")
	}
	l.n--
	return l.Store.Delete(ctx, key)
}

// contextDelete refuses deletes once the context is done, like a remote store would.
type contextDelete struct {
	blob.Store
}

func (c contextDelete) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Store.Delete(ctx, key)
}

// cancelOnGet cancels the caller's context as soon as the archive has been read.
type cancelOnGet struct {
	contextDelete
	cancel context.CancelFunc
}

func (c cancelOnGet) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.contextDelete.Get(ctx, key)
	c.cancel()
	return data, err
}

// unrecordedStore fails to record submissions.
type unrecordedStore struct {
	store.GalleryStore
}

func (unrecordedStore) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	return errors.New("database is read-only")
}
