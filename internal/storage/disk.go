package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/participa-df/ouvidoria-service/internal/config"
)

// DiskStore writes attachments under a local upload directory and returns
// path-addressable URLs served by the static file route.
type DiskStore struct {
	dir        string
	maxSize    int64
	extensions map[string]struct{}
}

// NewDiskStore prepares the upload directory.
func NewDiskStore(cfg config.UploadConfig) (*DiskStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	extensions := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}
	return &DiskStore{dir: cfg.Dir, maxSize: cfg.MaxSizeBytes, extensions: extensions}, nil
}

// Save validates size/extension and writes the payload to disk. The stored
// name is randomized so uploads cannot collide or be guessed.
func (s *DiskStore) Save(_ context.Context, input UploadInput) (*UploadResult, error) {
	if s.maxSize > 0 && int64(len(input.Body)) > s.maxSize {
		return nil, fmt.Errorf("file %q exceeds the %d byte limit", input.FileName, s.maxSize)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.FileName)), ".")
	if _, ok := s.extensions[ext]; !ok {
		return nil, fmt.Errorf("file extension %q is not allowed", ext)
	}

	name := uuid.NewString() + "." + ext
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, input.Body, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &UploadResult{
		URL:       "/uploads/" + name,
		SizeBytes: int64(len(input.Body)),
	}, nil
}
