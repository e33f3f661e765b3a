package metrics

import (
	"fmt"
	"net"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// DefaultNamespace prefixes every StatsD metric name.
const DefaultNamespace = "image_resizer"

const defaultStatsDPort = "8125"

// StatsD emits timings to a DogStatsD agent over UDP, tagged with the
// response status.
type StatsD struct {
	client statsd.ClientInterface
}

// NewStatsD connects to the agent at addr ("host" or "host:port", port 8125
// by default). An empty addr yields a sink that discards everything. tags are
// added to every metric.
func NewStatsD(addr, namespace string, tags ...string) (*StatsD, error) {
	if addr == "" {
		return &StatsD{client: &statsd.NoOpClient{}}, nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, defaultStatsDPort)
	}

	client, err := statsd.New(addr,
		statsd.WithNamespace(namespace),
		statsd.WithTags(tags),
		statsd.WithoutTelemetry(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create statsd client for %s: %w", addr, err)
	}
	return &StatsD{client: client}, nil
}

// Timing implements Sink. Send failures are dropped.
func (s *StatsD) Timing(name string, d time.Duration, status string) {
	_ = s.client.Timing(name, d, []string{"status:" + status}, 1)
}

// Close flushes buffered metrics and releases the socket.
func (s *StatsD) Close() error {
	return s.client.Close()
}
