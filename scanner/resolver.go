package scanner

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// ResolveFunc resolves a host string into a scan target. The default is
// ResolveTarget; tests substitute their own.
type ResolveFunc func(ctx context.Context, host string) (Target, error)

// ResolveTarget resolves a hostname or IP literal into a Target. The address
// family of the first returned entry is canonical for the whole scan, so a
// host with both A and AAAA records is probed over whichever family the
// resolver listed first. Any resolution failure surfaces as ErrInvalidHost.
func ResolveTarget(ctx context.Context, host string) (Target, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return Target{}, fmt.Errorf("%w: empty host", ErrInvalidHost)
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %s: %v", ErrInvalidHost, host, err)
	}
	if len(addrs) == 0 {
		return Target{}, fmt.Errorf("%w: no addresses for %s", ErrInvalidHost, host)
	}

	ip := addrs[0].IP
	network := "tcp6"
	if ip.To4() != nil {
		network = "tcp4"
	}
	return Target{Network: network, Host: ip.String()}, nil
}
