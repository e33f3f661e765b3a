// Package imaging is the image codec engine behind the resizer.
//
// It decodes fetched bytes into an Image handle, computes target sizes, resizes
// and re-encodes. Decoding supports JPEG, PNG, GIF (including animation),
// WebP, BMP and TIFF; encoding supports the same set.
//
// # Image Handles
//
// An *Image is mutable and is owned by a single request. Resize, Blur,
// StripMetadata, SetQuality and Encode change it in place, so a handle must
// never be shared across goroutines. Animated GIFs are held as fully
// composited frames: every frame has the canvas size, which lets FitScene
// resize them uniformly.
//
// # Sizing
//
// Fit computes a "contain" fit that preserves the aspect ratio. A resize whose
// result equals the intrinsic size should be skipped by the caller; Dimensions
// has Equal for that check.
//
// Decode and Resize refuse to hold more than MaxPixels pixels across all
// frames.
//
// # Initialisation
//
// Startup builds the encoder registry exactly once per process. It is
// idempotent and safe for concurrent use.
//
// # Errors
//
// Codec failures are returned as *apperror.Error values:
//   - InvalidImage when bytes cannot be decoded or declare too many pixels
//   - InvalidRequest when a resize target or blur radius is out of range
//   - InvalidFormat when a format cannot be resolved
//   - FailedWrite when a quality is out of range or encoding fails
package imaging
