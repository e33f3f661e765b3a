package metrics

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsD_NoAddressIsNoOp(t *testing.T) {
	s, err := NewStatsD("", DefaultNamespace)
	require.NoError(t, err)

	s.Timing("resize", time.Millisecond, "200")
	assert.NoError(t, s.Close())
}

func TestStatsD_EmitsTaggedTiming(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	s, err := NewStatsD(conn.LocalAddr().String(), DefaultNamespace, "env:test")
	require.NoError(t, err)

	s.Timing("test.track", 15*time.Millisecond, "200")
	require.NoError(t, s.Close())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 4096)
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)

	packet := string(buf[:n])
	var line string
	for _, l := range strings.Split(packet, "\n") {
		if strings.HasPrefix(l, "image_resizer.test.track:") {
			line = l
		}
	}
	require.NotEmpty(t, line, "packet: %q", packet)
	assert.Contains(t, line, "|ms|")
	assert.Contains(t, line, "env:test")
	assert.Contains(t, line, "status:200")
}
