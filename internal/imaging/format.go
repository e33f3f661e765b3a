package imaging

import (
	"fmt"
	"strings"
)

// Format names an image encoding understood by the codec.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	GIF  Format = "gif"
	WebP Format = "webp"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

var mimeTypes = map[Format]string{
	JPEG: "image/jpeg",
	PNG:  "image/png",
	GIF:  "image/gif",
	WebP: "image/webp",
	BMP:  "image/bmp",
	TIFF: "image/tiff",
}

// ParseFormat resolves a format name. Matching is case-insensitive and accepts
// the common aliases "jpg" and "tif".
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "jpg":
		return JPEG, nil
	case "tif":
		return TIFF, nil
	case JPEG, PNG, GIF, WebP, BMP, TIFF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", name)
	}
}

// MimeType returns the media type for f, or application/octet-stream when f
// is not a known format.
func (f Format) MimeType() string {
	if m, ok := mimeTypes[f]; ok {
		return m
	}
	return "application/octet-stream"
}

func (f Format) String() string {
	return string(f)
}
