package media

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/back-pedagogico/stories-backend/internal/storage"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	ThumbnailJpegQuality   = 85
	ThumbnailPrefix        = "thumb_"
	ThumbnailFileExtension = ".jpg"
)

// Processor builds thumbnails for uploaded images and saves them through the store.
type Processor struct {
	store   storage.FileStore
	maxSize int
}

// NewProcessor returns nil when maxSize is not positive, which disables thumbnails.
func NewProcessor(store storage.FileStore, maxSize int) *Processor {
	if maxSize <= 0 {
		return nil
	}
	return &Processor{store: store, maxSize: maxSize}
}

// ThumbnailName is the stored name of the thumbnail for an image stored as name.
func ThumbnailName(name string) string {
	return ThumbnailPrefix + strings.TrimSuffix(name, filepath.Ext(name)) + ThumbnailFileExtension
}

// GenerateThumbnail decodes data, fits it inside a maxSize square without
// upscaling and stores it as a JPEG. It returns the stored thumbnail name.
func (p *Processor) GenerateThumbnail(ctx context.Context, data []byte, name string) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return "", fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	thumb := imaging.Fit(img, p.maxSize, p.maxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(ThumbnailJpegQuality)); err != nil {
		return "", fmt.Errorf("thumbnail encoding failed: %w", err)
	}

	thumbName := ThumbnailName(name)
	if err := p.store.Save(ctx, thumbName, &buf); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return thumbName, nil
}
