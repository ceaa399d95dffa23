package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/back-pedagogico/stories-backend/config"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidName  = errors.New("invalid file name")
)

// FileStore keeps uploaded files under flat names.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, name string) error
}

// New builds the store selected by UPLOAD_DRIVER.
func New(ctx context.Context, uploadCfg *config.UploadConfig, s3Cfg *config.S3Config) (FileStore, error) {
	switch uploadCfg.Driver {
	case "", "local":
		return NewLocalStorage(uploadCfg.Dir)
	case "s3":
		return NewS3Storage(ctx, s3Cfg.Region, s3Cfg.Bucket, s3Cfg.AccessKeyID, s3Cfg.SecretAccessKey, s3Cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported upload driver %q", uploadCfg.Driver)
	}
}

// ContentType guesses a MIME type from the file extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// validName rejects anything that is not a single path element.
func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return ErrInvalidName
	}
	return nil
}
