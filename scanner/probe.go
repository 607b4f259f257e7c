package scanner

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// DefaultTimeout bounds a single connect attempt. 200ms keeps full-range
// scans practical while leaving room for typical LAN/WAN latency.
const DefaultTimeout = 200 * time.Millisecond

// ProbeFunc produces the classification for a single port. The coordinator
// uses Probe by default; tests inject a simulated implementation.
type ProbeFunc func(ctx context.Context, target Target, port uint16) ProbeResult

// Probe attempts a full TCP connect to (target, port) bounded by timeout and
// classifies the outcome:
//
//   - handshake completed: Open, with the service name from services
//   - connection refused or timed out: Closed
//   - any other I/O failure: Error
//
// A single definitive classification is produced; there are no retries.
func Probe(ctx context.Context, target Target, port uint16, timeout time.Duration, services *Directory) ProbeResult {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	address := net.JoinHostPort(target.Host, strconv.Itoa(int(port)))

	conn, err := dialer.DialContext(ctx, target.Network, address)
	if err == nil {
		_ = conn.Close()
		return ProbeResult{Port: port, Status: StatusOpen, Service: services.Name(port)}
	}

	if isTimeout(err) || isConnectionRefused(err) {
		return ProbeResult{Port: port, Status: StatusClosed}
	}

	// Network unreachable, fd exhaustion and the like: recorded so the scan
	// still completes, but excluded from the final report.
	return ProbeResult{Port: port, Status: StatusError}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isConnectionRefused detects an active RST refusal across platforms.
func isConnectionRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// Windows reports refusal with different wording.
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "actively refused")
}
