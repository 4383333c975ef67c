package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"askline/config"
)

// Storage is the object-storage boundary: write a file under a path and get
// a public URL back for it.
type Storage interface {
	Upload(path string, r io.Reader) (string, error)
	PublicURL(path string) string
}

// LocalStorage writes uploads to a directory served under /uploads
type LocalStorage struct {
	BaseDir string
	BaseURL string
}

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		BaseDir: config.AppConfig.UploadDir,
		BaseURL: config.AppConfig.AppBaseURL,
	}
}

func (s *LocalStorage) Upload(path string, r io.Reader) (string, error) {
	full := filepath.Join(s.BaseDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return s.PublicURL(path), nil
}

func (s *LocalStorage) PublicURL(path string) string {
	return fmt.Sprintf("%s/uploads/%s", strings.TrimRight(s.BaseURL, "/"), path)
}

// ObjectPath builds the storage path for an uploaded image:
// {userId}/{accountId}/{timestamp-random}.{ext}
func ObjectPath(userID, accountID uint, filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%d/%d/%d-%s.%s",
		userID, accountID, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}
