// Package assets concatenates, minifies and uploads the stylesheets and
// scripts referenced by the base template, then points the template at the
// hashed bundles.
package assets

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"

	config "github.com/mwantia/wind/internal/config/server"
	"github.com/mwantia/wind/pkg/blob"
	"github.com/mwantia/wind/pkg/log"
)

const staticURLTag = "{{ STATIC_URL }}"

// ConfigError reports a missing template, static file or marker class.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "assets: " + e.Msg
}

type kind struct {
	attr        string
	contentType string
}

var kinds = map[string]kind{
	"css": {attr: "href", contentType: "text/css"},
	"js":  {attr: "src", contentType: "application/javascript"},
}

// Bundle describes one uploaded bundle.
type Bundle struct {
	Ext   string
	Key   string
	URL   string
	Files []string
	Size  int
}

type Bundler struct {
	cfg   config.AssetsServerConfig
	fs    afero.Fs
	store blob.Store
	min   *minify.M
	log   log.LoggerService
}

// NewBundler reads templates and static files from fsys and uploads bundles
// to store.
func NewBundler(cfg config.AssetsServerConfig, fsys afero.Fs, store blob.Store, logger log.LoggerService) *Bundler {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)

	return &Bundler{
		cfg:   cfg,
		fs:    fsys,
		store: store,
		min:   m,
		log:   logger.Named("assets"),
	}
}

// Build processes the given extensions ("css", "js") in order and writes the
// updated base template once all bundles are uploaded.
func (b *Bundler) Build(ctx context.Context, exts ...string) ([]Bundle, error) {
	if len(exts) == 0 {
		return nil, &ConfigError{Msg: "nothing to build, select css and/or js"}
	}

	basePath, err := b.findFile(b.cfg.BaseHTML, b.cfg.TemplateDirs)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("can't find base html %q in template dirs %v", b.cfg.BaseHTML, b.cfg.TemplateDirs)}
	}

	f, err := b.fs.Open(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", basePath, err)
	}
	doc, err := goquery.NewDocumentFromReader(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", basePath, err)
	}

	var bundles []Bundle
	for _, ext := range exts {
		bundle, err := b.build(ctx, doc, ext)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, *bundle)
	}

	html, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", basePath, err)
	}
	if err := afero.WriteFile(b.fs, basePath, []byte(html), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", basePath, err)
	}

	b.log.Info("Updated %s with %d bundles", basePath, len(bundles))
	return bundles, nil
}

func (b *Bundler) build(ctx context.Context, doc *goquery.Document, ext string) (*Bundle, error) {
	k, ok := kinds[ext]
	if !ok {
		return nil, &ConfigError{Msg: fmt.Sprintf("unsupported asset type %q", ext)}
	}

	sources := doc.Find(".minify-" + ext)
	if sources.Length() == 0 {
		return nil, &ConfigError{Msg: fmt.Sprintf("no elements with class 'minify-%s' to bundle", ext)}
	}

	var combined bytes.Buffer
	var files []string
	var missing error
	sources.EachWithBreak(func(i int, s *goquery.Selection) bool {
		ref := strings.TrimPrefix(s.AttrOr(k.attr, ""), staticURLTag)
		name, err := b.findFile(ref, b.cfg.StaticDirs)
		if err != nil {
			missing = &ConfigError{Msg: fmt.Sprintf("can't find static file %q in static dirs %v", ref, b.cfg.StaticDirs)}
			return false
		}
		data, err := afero.ReadFile(b.fs, name)
		if err != nil {
			missing = fmt.Errorf("failed to read %s: %w", name, err)
			return false
		}
		combined.Write(data)
		files = append(files, name)
		return true
	})
	if missing != nil {
		return nil, missing
	}

	target := doc.Find(".minified-" + ext).First()
	if target.Length() == 0 {
		return nil, &ConfigError{Msg: fmt.Sprintf("no placeholder element with class 'minified-%s'", ext)}
	}

	sum := md5.Sum(combined.Bytes())
	key := fmt.Sprintf("%s/%s.min.%s", ext, hex.EncodeToString(sum[:]), ext)

	minified, err := b.min.Bytes(k.contentType, combined.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to minify %s: %w", ext, err)
	}

	content, opts, err := b.prepare(minified, k.contentType)
	if err != nil {
		return nil, err
	}
	if err := b.store.Put(ctx, key, bytes.NewReader(content), int64(len(content)), opts); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	ref := key
	if strings.Contains(target.AttrOr(k.attr, ""), staticURLTag) {
		ref = staticURLTag + key
	}
	target.SetAttr(k.attr, ref)

	b.log.Info("Uploaded %s (%d files, %d bytes)", key, len(files), len(content))
	return &Bundle{
		Ext:   ext,
		Key:   key,
		URL:   b.store.URL(key),
		Files: files,
		Size:  len(content),
	}, nil
}

func (b *Bundler) prepare(data []byte, contentType string) ([]byte, blob.PutOptions, error) {
	opts := blob.PutOptions{
		ContentType: contentType,
		ACL:         b.cfg.ACL,
		Headers:     map[string]string{},
	}
	for name, value := range b.cfg.Headers {
		if strings.EqualFold(name, "Cache-Control") {
			opts.CacheControl = value
			continue
		}
		opts.Headers[name] = value
	}

	if !b.cfg.Gzip {
		return data, opts, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, opts, fmt.Errorf("failed to compress bundle: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, opts, fmt.Errorf("failed to compress bundle: %w", err)
	}
	opts.ContentEncoding = "gzip"
	return buf.Bytes(), opts, nil
}

func (b *Bundler) findFile(name string, dirs []string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty file name")
	}
	for _, dir := range dirs {
		candidate := path.Join(dir, name)
		info, err := b.fs.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s not found", name)
}
