package scanner

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestProbeOpenPort(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	registry := &ServiceTable{entries: map[uint16]string{port: "testsvc"}}
	directory := NewDirectoryWithSystem(nil, registry)

	target := Target{Network: "tcp4", Host: "127.0.0.1"}
	res := Probe(context.Background(), target, port, time.Second, directory)

	if res.Status != StatusOpen {
		t.Fatalf("expected Open, got %s", res.Status)
	}
	if res.Port != port {
		t.Fatalf("result port = %d, want %d", res.Port, port)
	}
	if res.Service != "testsvc" {
		t.Fatalf("service = %q, want testsvc", res.Service)
	}
}

func TestProbeClosedPort(t *testing.T) {
	// Grab a free loopback port, then close the listener so the connect is
	// actively refused.
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	_ = ln.Close()

	target := Target{Network: "tcp4", Host: "127.0.0.1"}
	res := Probe(context.Background(), target, port, time.Second, nil)

	if res.Status != StatusClosed {
		t.Fatalf("expected Closed, got %s", res.Status)
	}
	if res.Service != "" {
		t.Fatalf("closed port must not carry a service name, got %q", res.Service)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestErrorClassification(t *testing.T) {
	timeout := &net.OpError{Op: "dial", Err: timeoutError{}}
	if !isTimeout(timeout) {
		t.Fatal("timeout error not recognised")
	}
	if isTimeout(&net.OpError{Op: "dial", Err: &net.AddrError{Err: "nope"}}) {
		t.Fatal("non-timeout error classified as timeout")
	}

	refusedByText := &net.OpError{Op: "dial", Err: &net.AddrError{Err: "connection refused"}}
	if !isConnectionRefused(refusedByText) {
		t.Fatal("refusal not recognised from error text")
	}
	if isConnectionRefused(&net.OpError{Op: "dial", Err: &net.AddrError{Err: "network is unreachable"}}) {
		t.Fatal("unreachable network misclassified as refused")
	}
}
