// Package storage hosts case images on Cloudinary. Uploads are resized and
// re-encoded before leaving the process; deletes are best effort.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// UploadResult identifies a hosted image.
type UploadResult struct {
	PublicID  string
	URL       string
	SecureURL string
}

// ImageStore uploads processed images and removes them by public ID.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, folder string) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// CloudinaryStore is the production ImageStore.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore builds a store from account credentials.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Upload sends an already-processed image to the given folder. The public ID
// is generated here so records can be matched to hosted assets later.
func (s *CloudinaryStore) Upload(ctx context.Context, data []byte, folder string) (*UploadResult, error) {
	resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		PublicID:     uuid.NewString(),
		ResourceType: "image",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload image: %s", resp.Error.Message)
	}

	return &UploadResult{
		PublicID:  resp.PublicID,
		URL:       resp.URL,
		SecureURL: resp.SecureURL,
	}, nil
}

// Destroy removes a hosted image. Callers treat failures as non-fatal.
func (s *CloudinaryStore) Destroy(ctx context.Context, publicID string) error {
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("failed to delete image: %s", resp.Error.Message)
	}
	return nil
}
