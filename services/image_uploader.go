package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MaxImageSize is the largest feedback photo accepted (5MB)
const MaxImageSize = 5 * 1024 * 1024

// ImageUploader stores a feedback photo and returns its public URL, which is
// then submitted as the feedback's image reference.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, filename string, employeeID uint) (string, error)
}

// ValidImageName reports whether filename has an accepted image extension
func ValidImageName(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader connects with a cloudinary:// URL. Uploads land under
// folder/<employee id>.
func NewCloudinaryUploader(cloudinaryURL, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	if folder == "" {
		folder = "feedback"
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, filename string, employeeID uint) (string, error) {
	overwrite := false
	unique := true
	folder := fmt.Sprintf("%s/%d", u.folder, employeeID)

	log.Printf("📸 Uploading feedback image %s to folder: %s", filename, folder)
	res, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		PublicID:       strings.TrimSuffix(filename, filepath.Ext(filename)),
		Overwrite:      &overwrite,
		UniqueFilename: &unique,
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", filename, res.Error.Message)
	}

	log.Printf("✅ Feedback image uploaded: %s", res.SecureURL)
	return res.SecureURL, nil
}
