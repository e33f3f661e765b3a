package imaging

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bep/imagemeta"
)

// Metadata holds the rights-related fields found in a source image's
// EXIF, IPTC and XMP blocks.
type Metadata struct {
	Copyright string `json:"copyright,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Credit    string `json:"credit,omitempty"`
	Source    string `json:"source,omitempty"`
	License   string `json:"license,omitempty"`
}

// metadataFormats maps the formats imagemeta can read to its identifiers.
var metadataFormats = map[Format]imagemeta.ImageFormat{
	JPEG: imagemeta.JPEG,
	PNG:  imagemeta.PNG,
	TIFF: imagemeta.TIFF,
	WebP: imagemeta.WebP,
}

var metadataTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {"Copyright": true, "Artist": true},
	imagemeta.IPTC: {"CopyrightNotice": true, "Credit": true, "Byline": true, "Source": true},
	imagemeta.XMP:  {"Rights": true, "Creator": true, "License": true, "WebStatement": true},
}

// ExtractMetadata parses EXIF, IPTC and XMP blocks from raw image bytes
// encoded as f. It returns nil when f carries no metadata blocks, or when data
// holds none of the fields of interest or cannot be parsed; metadata is
// informational and never fails a request.
func ExtractMetadata(data []byte, f Format) *Metadata {
	imageFormat, ok := metadataFormats[f]
	if len(data) == 0 || !ok {
		return nil
	}

	meta := &Metadata{}
	found := false

	_, err := imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: imageFormat,
		Sources:     imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return metadataTags[ti.Source][ti.Tag]
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			s := tagString(ti.Value)
			if s == "" {
				return nil
			}
			switch ti.Tag {
			case "Copyright", "CopyrightNotice", "Rights":
				setOnce(&meta.Copyright, s)
			case "Artist", "Byline", "Creator":
				setOnce(&meta.Artist, s)
			case "Credit":
				setOnce(&meta.Credit, s)
			case "Source":
				setOnce(&meta.Source, s)
			case "License", "WebStatement":
				setOnce(&meta.License, s)
			default:
				return nil
			}
			found = true
			return nil
		},
	})
	if err != nil || !found {
		return nil
	}
	return meta
}

func setOnce(field *string, v string) {
	if *field == "" {
		*field = v
	}
}

func tagString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return cleanTag(t)
	case []string:
		return cleanTag(strings.Join(t, ", "))
	default:
		return cleanTag(fmt.Sprint(t))
	}
}

// cleanTag trims whitespace and the NUL terminators of EXIF ASCII values.
func cleanTag(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}
