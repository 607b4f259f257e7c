package scanner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidHost indicates the target host failed resolution.
	// No probes are issued once this is returned.
	ErrInvalidHost = errors.New("invalid host address")

	// ErrInvalidRange indicates a malformed or out-of-bounds port range.
	ErrInvalidRange = errors.New("invalid port range")
)

// ProbeStatus classifies the outcome of a single port probe.
type ProbeStatus string

const (
	StatusOpen   ProbeStatus = "Open"
	StatusClosed ProbeStatus = "Closed"
	StatusError  ProbeStatus = "Error"
)

// ProbeResult is the definitive classification of one port. Exactly one is
// produced per port per scan; it is never mutated afterwards.
type ProbeResult struct {
	Port    uint16      `json:"port"`
	Status  ProbeStatus `json:"status"`
	Service string      `json:"service,omitempty"`
}

// Target is a resolved scan destination. Network is "tcp4" or "tcp6",
// fixed by the first address the resolver returned; every probe of the
// same scan uses the same family.
type Target struct {
	Network string
	Host    string
}

// PortRange is an inclusive span of ports to scan.
type PortRange struct {
	Start uint16
	End   uint16
}

// Validate reports whether the range is well formed.
func (r PortRange) Validate() error {
	if r.Start > r.End {
		return fmt.Errorf("%w: start port %d greater than end port %d", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// Count returns the number of ports covered by the range.
func (r PortRange) Count() int {
	return int(r.End) - int(r.Start) + 1
}

// ParsePortRange parses a "startPort-endPort" string. Both bounds must be
// integers in 0-65535 and start must not exceed end.
func ParsePortRange(spec string) (PortRange, error) {
	parts := strings.Split(strings.TrimSpace(spec), "-")
	if len(parts) != 2 {
		return PortRange{}, fmt.Errorf("%w: use startPort-endPort", ErrInvalidRange)
	}

	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return PortRange{}, fmt.Errorf("%w: start port is not a number: %s", ErrInvalidRange, parts[0])
	}

	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return PortRange{}, fmt.Errorf("%w: end port is not a number: %s", ErrInvalidRange, parts[1])
	}

	if start < 0 || start > 65535 || end < 0 || end > 65535 {
		return PortRange{}, fmt.Errorf("%w: ports must be within 0-65535", ErrInvalidRange)
	}

	r := PortRange{Start: uint16(start), End: uint16(end)}
	if err := r.Validate(); err != nil {
		return PortRange{}, err
	}
	return r, nil
}
