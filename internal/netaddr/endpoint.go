package netaddr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrResolve is returned when forward DNS resolution of a hostname fails.
var ErrResolve = errors.New("dns resolution failed")

// Endpoint is a validated (host, port) pair. Host is either an IPv4
// literal or a hostname; Port is always within [0, 65535]. Values are
// created through ParseHostPort / ParseSocketAddr and never mutated.
type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// IsLiteral reports whether the host is an IPv4 literal,
// meaning resolution needs no network round trip.
func (e Endpoint) IsLiteral() bool {
	return ipv4Re.MatchString(e.Host)
}

// Resolve verifies the endpoint's host resolves to at least one IPv4
// address. IPv4 literals succeed without touching the network. The lookup
// is bounded by ctx; callers are expected to pass a deadline.
func (e Endpoint) Resolve(ctx context.Context) error {
	if e.IsLiteral() {
		return nil
	}

	addrs, err := net.DefaultResolver.LookupIP(ctx, "ip4", e.Host)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrResolve, e.Host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("%w: %s: no addresses", ErrResolve, e.Host)
	}

	return nil
}

// String renders the canonical "host:port" form. It is the exact inverse
// of ParseSocketAddr for any Endpoint that function produced.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}
