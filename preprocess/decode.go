package preprocess

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"slices"

	"github.com/disintegration/imaging"
	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/webp"
)

type DecodeOptions struct {
	// AllowedFormats uses the names reported by image.DecodeConfig
	// ("jpeg", "png", "webp", "avif"). Empty allows every registered format.
	AllowedFormats []string
	// AutoOrient applies the EXIF orientation tag. The model was trained on
	// images loaded without it, so it is off unless configured.
	AutoOrient bool
	// MaxBytes caps how much of r is read. Zero means no cap.
	MaxBytes int64
	// MaxPixels caps width*height as declared in the image header, checked
	// before any pixel data is decoded. Zero means no cap.
	MaxPixels int64
}

// Decode reads an uploaded image and returns it with its format name.
func Decode(r io.Reader, opts DecodeOptions) (image.Image, string, error) {
	if opts.MaxBytes > 0 {
		r = io.LimitReader(r, opts.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, "", &UnsupportedImageError{Reason: fmt.Sprintf("larger than %d bytes", opts.MaxBytes)}
	}
	if len(data) == 0 {
		return nil, "", &UnsupportedImageError{Reason: "empty file"}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", &UnsupportedImageError{Reason: "cannot decode", Err: err}
	}
	if len(opts.AllowedFormats) > 0 && !slices.Contains(opts.AllowedFormats, format) {
		return nil, format, &UnsupportedImageError{Reason: fmt.Sprintf("format %q is not accepted", format)}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, format, &UnsupportedImageError{Reason: "zero-size image"}
	}
	if opts.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > opts.MaxPixels {
		return nil, format, &UnsupportedImageError{Reason: "image dimensions too large"}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(opts.AutoOrient))
	if err != nil {
		return nil, format, &UnsupportedImageError{Reason: "cannot decode", Err: err}
	}
	return img, format, nil
}
