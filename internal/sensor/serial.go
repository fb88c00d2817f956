package sensor

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"go.bug.st/serial"

	"github.com/ridepulse-app/crashguard/internal/monitoring"
)

// SerialSource reads CSV telemetry lines from an IMU attached over a serial
// port.
type SerialSource struct {
	portName string
	baudRate int
	handler  Handler
}

// NewSerialSource creates a source for the given port (e.g. /dev/ttyUSB0).
func NewSerialSource(portName string, baudRate int, handler Handler) *SerialSource {
	return &SerialSource{portName: portName, baudRate: baudRate, handler: handler}
}

// Run reads lines until the port errors or ctx is cancelled.
func (s *SerialSource) Run(ctx context.Context) error {
	mode := &serial.Mode{BaudRate: s.baudRate}
	port, err := serial.Open(s.portName, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.portName, err)
	}
	defer port.Close()

	go func() {
		<-ctx.Done()
		port.Close()
	}()

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sample, err := ParseCSVSample(line)
		if err != nil {
			monitoring.Logf("skipping malformed serial line: %v", err)
			continue
		}
		s.handler(sample)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("serial read failed: %w", err)
	}
	return nil
}
