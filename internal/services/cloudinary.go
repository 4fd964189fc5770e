package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret, folder string) (ObjectStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	return &cloudinaryStorage{cld: cld, folder: folder}, nil
}

// Upload implements ObjectStorage. Resumes go up as raw assets so PDFs and
// office documents keep their bytes.
func (c *cloudinaryStorage) Upload(ctx context.Context, filePath, publicID string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, filePath, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       c.folder,
		ResourceType: "raw",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", errors.New("cloudinary returned no url")
	}

	return resp.SecureURL, nil
}
