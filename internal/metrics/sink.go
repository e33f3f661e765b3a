// Package metrics records request timings.
//
// A Sink receives one observation per request from the Timing middleware.
// Sinks are shared by every request goroutine and must be safe for concurrent
// use; emission is fire-and-forget, so a Sink never reports errors.
package metrics

import "time"

//go:generate mockgen -source=sink.go -destination=mock_sink_test.go -package=metrics

// Sink receives request timings.
type Sink interface {
	// Timing records that the request named name took d and finished with
	// status, a numeric HTTP status code or "error".
	Timing(name string, d time.Duration, status string)
}

// Multi fans every observation out to several sinks.
type Multi []Sink

// Timing implements Sink.
func (m Multi) Timing(name string, d time.Duration, status string) {
	for _, s := range m {
		s.Timing(name, d, status)
	}
}

// Discard is a Sink that drops every observation.
var Discard Sink = discard{}

type discard struct{}

func (discard) Timing(string, time.Duration, string) {}
