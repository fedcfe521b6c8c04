package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/helpdesk/backend/internal/config"
)

// BlobStore stores named byte payloads such as avatar images. Callers own
// the object names; GenerateObjectName produces collision-free ones.
type BlobStore interface {
	Save(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Open(ctx context.Context, objectName string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectName string) error
}

// NewBlobStore selects the configured backend.
func NewBlobStore(cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocalStore(cfg.UploadDir)
	case "minio":
		return NewMinIOStore(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// GenerateObjectName derives a unique object name, keeping the original
// extension so content types stay derivable.
func GenerateObjectName(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return uuid.NewString() + ext
}
