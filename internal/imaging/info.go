package imaging

import (
	"github.com/corona10/goimagehash"
)

// Info describes a decoded source image.
type Info struct {
	// Width and Height are the intrinsic dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the detected source format, e.g. "jpeg".
	Format   Format `json:"format"`
	MimeType string `json:"mime_type"`

	// Frames is 1 for still images and the frame count for animations.
	Frames int `json:"frames"`

	// HasAlpha is true when the first frame has transparent pixels.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the size of the fetched source.
	SizeBytes int `json:"size_bytes"`

	DominantColors []ColorFrequency `json:"dominant_colors"`

	// PerceptualHash is a difference hash of the first frame ("d:<hex>"),
	// empty when hashing failed.
	PerceptualHash string `json:"perceptual_hash,omitempty"`

	Metadata *Metadata `json:"metadata,omitempty"`
}

// Inspect gathers Info for img, which was decoded from data. Rights metadata
// is parsed from data unless img already carries some.
//
// Returns apperror.InvalidFormat when the source format is not supported.
func Inspect(img *Image, data []byte, colors int) (*Info, error) {
	format, err := img.DetectedFormat()
	if err != nil {
		return nil, err
	}

	d := img.Dimensions()
	info := &Info{
		Width:          d.Width,
		Height:         d.Height,
		Format:         format,
		MimeType:       format.MimeType(),
		Frames:         img.Frames(),
		HasAlpha:       img.HasAlpha(),
		SizeBytes:      len(data),
		DominantColors: DominantColors(img.frames[0], colors),
		Metadata:       img.Metadata(),
	}
	if info.Metadata == nil {
		info.Metadata = ExtractMetadata(data, format)
	}

	if hash, err := goimagehash.DifferenceHash(img.frames[0]); err == nil {
		info.PerceptualHash = hash.ToString()
	}
	return info, nil
}
