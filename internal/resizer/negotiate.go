package resizer

import (
	"strings"

	"github.com/ironsheep/image-resizer/internal/apperror"
	"github.com/ironsheep/image-resizer/internal/imaging"
)

// AutoFormat asks Negotiate to pick the output format from the Accept header.
const AutoFormat = "auto"

// Negotiate chooses the output format of a resize.
//
// An empty selector keeps the source format. "auto" picks WebP when accept
// lists image/webp and the source format otherwise; vary is true in that case
// so the response can carry "Vary: Accept". Any other selector must name a
// supported format, or apperror.InvalidFormat is returned.
func Negotiate(selector, accept string, source imaging.Format) (format imaging.Format, vary bool, err error) {
	switch strings.ToLower(strings.TrimSpace(selector)) {
	case "":
		return source, false, nil
	case AutoFormat:
		// A plain substring match: q-values are not parsed, so
		// "image/webp;q=0" still selects WebP.
		if strings.Contains(accept, imaging.WebP.MimeType()) {
			return imaging.WebP, true, nil
		}
		return source, true, nil
	}

	f, err := imaging.ParseFormat(selector)
	if err != nil {
		return "", false, apperror.New(apperror.InvalidFormat, err)
	}
	return f, false, nil
}
