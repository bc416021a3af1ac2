package gallery

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels applies when the configuration leaves max_pixels unset.
const DefaultMaxPixels int64 = 50_000_000

type decodedImage struct {
	Width  int
	Height int
	Format string
}

func (d *decodedImage) ContentType() string {
	return "image/" + d.Format
}

// decodeImage requires the header and the full pixel data to decode and agree
// on dimensions; truncated files fail the second step. Headers claiming more
// than maxPixels are rejected before any pixel buffer is allocated.
func decodeImage(data []byte, maxPixels int64) (*decodedImage, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image header reports invalid size %dx%d", cfg.Width, cfg.Height)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
		return nil, fmt.Errorf("image size %dx%d exceeds the limit of %d pixels", cfg.Width, cfg.Height, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != cfg.Width || bounds.Dy() != cfg.Height {
		return nil, fmt.Errorf("decoded size %dx%d does not match header %dx%d",
			bounds.Dx(), bounds.Dy(), cfg.Width, cfg.Height)
	}

	return &decodedImage{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}
