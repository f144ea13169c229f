package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/participa-df/ouvidoria-service/internal/config"
)

func newTestStore(t *testing.T) (*DiskStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDiskStore(config.UploadConfig{
		Dir:               dir,
		MaxSizeBytes:      1024,
		AllowedExtensions: []string{"jpg", "pdf"},
	})
	if err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	return store, dir
}

func TestDiskStoreSave(t *testing.T) {
	store, dir := newTestStore(t)

	result, err := store.Save(context.Background(), UploadInput{
		FileName:    "foto.JPG",
		Body:        []byte("payload"),
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(result.URL, "/uploads/") {
		t.Errorf("unexpected URL %q", result.URL)
	}
	if result.SizeBytes != int64(len("payload")) {
		t.Errorf("size mismatch: %d", result.SizeBytes)
	}

	name := strings.TrimPrefix(result.URL, "/uploads/")
	if name == "foto.JPG" {
		t.Error("stored name must be randomized")
	}
	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(content) != "payload" {
		t.Errorf("content mismatch: %q", content)
	}
}

func TestDiskStoreRejectsBadUploads(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Save(ctx, UploadInput{FileName: "script.exe", Body: []byte("x")}); err == nil {
		t.Error("disallowed extension must be rejected")
	}
	if _, err := store.Save(ctx, UploadInput{FileName: "big.jpg", Body: make([]byte, 2048)}); err == nil {
		t.Error("oversized upload must be rejected")
	}
}
