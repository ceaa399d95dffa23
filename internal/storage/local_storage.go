package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/back-pedagogico/stories-backend/pkg/logger"
)

// LocalStorage stores files in a single directory on the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage resolves dir to an absolute path and creates it if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid upload directory '%s': %w", dir, err)
	}
	if err := os.MkdirAll(absBasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory '%s': %w", absBasePath, err)
	}

	logger.Info("Local file storage initialized", map[string]interface{}{
		"path": absBasePath,
	})
	return &LocalStorage{basePath: absBasePath}, nil
}

func (ls *LocalStorage) fullPath(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	full := filepath.Join(ls.basePath, name)
	if !strings.HasPrefix(filepath.Clean(full), ls.basePath+string(os.PathSeparator)) {
		return "", ErrInvalidName
	}
	return full, nil
}

// Save writes to a temporary file and renames it into place, so readers never see a partial file.
func (ls *LocalStorage) Save(_ context.Context, name string, r io.Reader) error {
	full, err := ls.fullPath(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(ls.basePath, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file '%s': %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close file '%s': %w", name, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file '%s' into place: %w", name, err)
	}
	return nil
}

func (ls *LocalStorage) Open(_ context.Context, name string) (io.ReadCloser, int64, error) {
	full, err := ls.fullPath(name)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, ErrFileNotFound
		}
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, ErrFileNotFound
	}
	return f, info.Size(), nil
}

func (ls *LocalStorage) Delete(_ context.Context, name string) error {
	full, err := ls.fullPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrFileNotFound
		}
		return err
	}
	return nil
}
