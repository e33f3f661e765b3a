// Package server implements the HTTP front end of the image resizer.
//
// # Endpoints
//
//   - GET /resize?source=&width=&height=&quality=&format=&blur=
//     Fetches source, resizes it to fit inside width x height while keeping
//     its aspect ratio and returns the encoded image. format is a format name
//     (jpeg, png, gif, webp, bmp, tiff) or "auto", which serves WebP to clients
//     that accept it.
//   - GET /info?source=
//     Returns a JSON description of source: size, format, frame count,
//     dominant colors, a perceptual hash and rights metadata.
//   - GET /ping
//     Health check, answers "pong".
//   - GET /metrics
//     Prometheus exposition of the request duration histogram.
//
// # Caching
//
// Successful /resize responses carry Cache-Control, Last-Modified and Expires
// headers computed by resizer.CacheHeaders, and "Vary: Accept" when the output
// format was negotiated.
//
// # Error Handling
//
// Every pipeline failure is answered with 400 Bad Request and a short
// plain-text message such as "Image Host Is Not Allowed". The underlying cause
// is logged with the request id and never sent to the client. A malformed
// query string is answered with "Query deserialize error: <reason>".
//
// # Middleware
//
// Requests pass through, in order: request id assignment (UUID), request
// timing (metrics.Timing), access logging (log/slog) and panic recovery.
// /ping and /metrics are neither timed nor logged.
//
// # Usage
//
//	srv := server.New(svc, sink, prometheus.DefaultGatherer)
//	if err := srv.Run(ctx, cfg.Port); err != nil {
//	    slog.Error("server error", "error", err)
//	}
package server
