package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// frameUpload is a validated multipart frame
type frameUpload struct {
	data     []byte
	mimeType string
}

// extractFrame reads the "image" part of a multipart form
func extractFrame(c *fiber.Ctx) (*frameUpload, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if file.Size == 0 || file.Size > maxImageSize {
		return nil, domain.ErrInvalidImage
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return &frameUpload{data: data, mimeType: contentType}, nil
}
