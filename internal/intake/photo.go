package intake

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG for sniffing
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp" // register WebP for sniffing

	"github.com/jonathan/cv-builder/internal/types"
)

// Photo rejection messages shown next to the upload control.
const (
	MsgPhotoType = "Tipo de archivo no permitido. Use JPG, PNG o WebP."
	MsgPhotoSize = "El archivo es muy grande. Máximo 5MB."
)

const webpJPEGQuality = 90

// PhotoError explains why an uploaded photo was rejected.
type PhotoError struct {
	Filename string
	Message  string
	Cause    error
}

func (e *PhotoError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("photo %q rejected: %s: %v", e.Filename, e.Message, e.Cause)
	}
	return fmt.Sprintf("photo %q rejected: %s", e.Filename, e.Message)
}

func (e *PhotoError) Unwrap() error {
	return e.Cause
}

// LoadPhoto validates an uploaded profile picture. The type is sniffed from the bytes,
// not the filename. WebP images are re-encoded to JPEG because the PDF writer only embeds JPEG and PNG.
func LoadPhoto(filename string, data []byte) (*types.Photo, error) {
	if len(data) > types.MaxPhotoBytes {
		return nil, &PhotoError{Filename: filename, Message: MsgPhotoSize}
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &PhotoError{Filename: filename, Message: MsgPhotoType, Cause: err}
	}

	photo := &types.Photo{Filename: filename, Data: data, SizeBytes: int64(len(data))}
	switch format {
	case "jpeg":
		photo.MimeType = "image/jpeg"
	case "png":
		photo.MimeType = "image/png"
	case "webp":
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, &PhotoError{Filename: filename, Message: MsgPhotoType, Cause: err}
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: webpJPEGQuality}); err != nil {
			return nil, &PhotoError{Filename: filename, Message: "failed to convert WebP", Cause: err}
		}
		photo.Data = buf.Bytes()
		photo.MimeType = "image/jpeg"
		photo.SizeBytes = int64(len(photo.Data))
		if filename != "" {
			photo.Filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
		}
	default:
		return nil, &PhotoError{Filename: filename, Message: MsgPhotoType}
	}
	return photo, nil
}
