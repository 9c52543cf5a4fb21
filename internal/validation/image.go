package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ValidatedImage is an upload that passed type, size and dimension checks,
// fully buffered and ready to hand to the storage service.
type ValidatedImage struct {
	Filename string
	MimeType string
	Width    int
	Height   int
	Data     []byte
}

type ImageLimits struct {
	MaxBytes     int64
	AllowedMimes []string
	MaxWidth     int
	MaxHeight    int
}

// ValidateImage checks one uploaded file against the limits. The MIME type is
// sniffed from content, never trusted from the part header, and the image
// must actually decode.
func ValidateImage(fileHeader *multipart.FileHeader, limits ImageLimits) (*ValidatedImage, error) {
	if fileHeader.Size > limits.MaxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrPayloadTooLarge, fileHeader.Filename, fileHeader.Size, limits.MaxBytes)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limits.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > limits.MaxBytes {
		return nil, fmt.Errorf("%w: %s", ErrPayloadTooLarge, fileHeader.Filename)
	}

	mimeType := http.DetectContentType(data)
	if !mimeAllowed(mimeType, limits.AllowedMimes) {
		return nil, fmt.Errorf("%w: %s (file: %s)", ErrInvalidMimeType, mimeType, fileHeader.Filename)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, fileHeader.Filename)
	}
	if (limits.MaxWidth > 0 && cfg.Width > limits.MaxWidth) ||
		(limits.MaxHeight > 0 && cfg.Height > limits.MaxHeight) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height, limits.MaxWidth, limits.MaxHeight)
	}

	return &ValidatedImage{
		Filename: fileHeader.Filename,
		MimeType: mimeType,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Data:     data,
	}, nil
}

func mimeAllowed(mimeType string, allowed []string) bool {
	for _, m := range allowed {
		if m == mimeType {
			return true
		}
	}
	return false
}

// ParseMultipart enforces the request size limit and parses the form.
// MaxBytesReader stops reading once the limit is crossed, so an oversized
// upload cannot exhaust the process.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return fmt.Errorf("%w: failed to parse multipart form", ErrPayloadTooLarge)
	}
	return nil
}
