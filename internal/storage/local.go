package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/helpdesk/backend/pkg/logger"
)

// ErrObjectNotFound is returned when a named blob does not exist.
var ErrObjectNotFound = errors.New("object not found")

// LocalStore keeps blobs as flat files under the configured upload
// directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

func (l *LocalStore) Save(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	path, err := l.objectPath(objectName)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		logger.Error("local_store_save_failed", err, map[string]interface{}{
			"object_name": objectName,
			"size":        size,
		})
		return err
	}
	return nil
}

func (l *LocalStore) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	path, err := l.objectPath(objectName)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (l *LocalStore) Delete(ctx context.Context, objectName string) error {
	path, err := l.objectPath(objectName)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// objectPath rejects names that would escape the upload directory.
func (l *LocalStore) objectPath(objectName string) (string, error) {
	cleaned := filepath.Base(filepath.Clean(objectName))
	if cleaned == "." || cleaned == ".." || strings.ContainsAny(objectName, `/\`) {
		return "", errors.New("invalid object name")
	}
	return filepath.Join(l.dir, cleaned), nil
}
