package providers

import (
	"context"
	"io"
)

// ImageProvider defines the interface for the external image host
type ImageProvider interface {
	// Upload stores the image and returns where it is served from
	Upload(ctx context.Context, image ImageUpload) (*UploadedImage, error)

	// Destroy releases a previously uploaded image
	Destroy(ctx context.Context, externalID string) error
}

// ImageUpload is an image file received from a client
type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UploadedImage identifies an image held by the host
type UploadedImage struct {
	URL        string
	ExternalID string
}
