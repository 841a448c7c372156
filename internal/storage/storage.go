package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image file too large (max 5MB)")
)

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Storage keeps product images and hands back the URL stored on the product.
type Storage interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
	// Delete removes an image previously returned by Save. References the
	// backend does not own are ignored.
	Delete(ctx context.Context, ref string) error
}

// ValidateImage checks the upload's extension and size and returns the
// normalized extension.
func ValidateImage(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", fmt.Errorf("%w: no file", ErrUnsupportedImage)
	}
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := imageContentTypes[extension]; !ok {
		if extension == "" {
			return "", fmt.Errorf("%w: file extension is required", ErrUnsupportedImage)
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, extension)
	}
	if file.Size > MaxImageSize {
		return "", ErrImageTooLarge
	}
	return extension, nil
}

func objectName(extension string) string {
	return "products/" + uuid.NewString() + extension
}

func contentTypeFor(extension string) string {
	return imageContentTypes[extension]
}
