package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/ridepulse-app/crashguard/internal/monitoring"
	"github.com/ridepulse-app/crashguard/internal/motion"
)

// UDPSource receives JSON-encoded motion samples, one per datagram. This is
// how the companion app's sensor process pushes telemetry on-device.
type UDPSource struct {
	addr    string
	handler Handler
}

// NewUDPSource creates a source listening on addr (e.g. ":9911").
func NewUDPSource(addr string, handler Handler) *UDPSource {
	return &UDPSource{addr: addr, handler: handler}
}

// Run listens until ctx is cancelled. Malformed datagrams are logged and
// skipped; a sample stream with occasional garbage is normal.
func (s *UDPSource) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 4096)
	for {
		// Deadline so shutdown is observed even with no traffic.
		conn.SetReadDeadline(time.Now().Add(time.Second))
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return fmt.Errorf("udp read failed: %w", err)
		}

		var sample motion.MotionSample
		if err := json.Unmarshal(buf[:n], &sample); err != nil {
			monitoring.Logf("dropping malformed sample datagram: %v", err)
			continue
		}
		s.handler(sample)
	}
}
