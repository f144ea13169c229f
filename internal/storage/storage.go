package storage

import "context"

// UploadInput describes one attachment payload to persist.
type UploadInput struct {
	FileName    string
	Body        []byte
	ContentType string
}

// UploadResult describes the persisted artifact.
type UploadResult struct {
	URL       string
	SizeBytes int64
}

// FileStore persists attachment payloads outside the relational store.
type FileStore interface {
	Save(ctx context.Context, input UploadInput) (*UploadResult, error)
}
