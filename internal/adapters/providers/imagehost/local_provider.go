package imagehost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
)

// LocalProvider keeps images on the local disk, for development and seeding
type LocalProvider struct {
	dir     string
	baseURL string
}

// NewLocalProvider creates the upload directory if needed
func NewLocalProvider(dir, baseURL string) (*LocalProvider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalProvider{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes the image under a fresh name keeping its extension
func (p *LocalProvider) Upload(ctx context.Context, upload providers.ImageUpload) (*providers.UploadedImage, error) {
	name := uuid.New().String() + strings.ToLower(filepath.Ext(upload.Filename))
	path := filepath.Join(p.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(dst, upload.Content); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}

	return &providers.UploadedImage{URL: p.baseURL + "/" + name, ExternalID: name}, nil
}

// Destroy removes the image file. Missing files are ignored.
func (p *LocalProvider) Destroy(ctx context.Context, externalID string) error {
	if externalID == "" {
		return nil
	}
	err := os.Remove(filepath.Join(p.dir, filepath.Base(externalID)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}
