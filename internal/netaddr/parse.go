// Package netaddr parses and validates game server addresses.
// Untrusted tokens become Endpoint values only through the parse
// functions here; there is no way to construct an out-of-range port
// or a malformed host.
package netaddr

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a token does not match the address grammar.
var ErrMalformed = errors.New("malformed address")

const (
	octet   = `(25[0-5]|2[0-4][0-9]|1[0-9]{2}|[1-9]?[0-9])`
	label   = `([a-zA-Z0-9]|[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9])`
	maxPort = 65535
)

var (
	ipv4Re     = regexp.MustCompile(`^(` + octet + `\.){3}` + octet + `$`)
	hostnameRe = regexp.MustCompile(`^(` + label + `\.)*` + label + `$`)
)

// ParseHostPort validates separate host and port tokens and combines them
// into an Endpoint. The host must be a strict dotted-quad IPv4 literal or a
// hostname of alphanumeric-and-hyphen labels; the port must be an integer
// in [0, 65535].
func ParseHostPort(host, port string) (Endpoint, error) {
	if !ipv4Re.MatchString(host) && !hostnameRe.MatchString(host) {
		return Endpoint{}, fmt.Errorf("%w: invalid host %q", ErrMalformed, host)
	}

	p, err := parsePort(port)
	if err != nil {
		return Endpoint{}, err
	}

	return Endpoint{Host: host, Port: p}, nil
}

// ParseSocketAddr parses a combined "host:port" token. The port is the
// segment after the last colon; the remainder is matched as an IPv4 literal
// first and as a hostname only if that fails, so a typo in the last octet
// of an IP does not silently turn into a DNS name. The whole token must be
// consumed by the grammar.
func ParseSocketAddr(token string) (Endpoint, error) {
	idx := strings.LastIndexByte(token, ':')
	if idx < 0 {
		return Endpoint{}, fmt.Errorf("%w: missing port in %q", ErrMalformed, token)
	}

	host, portToken := token[:idx], token[idx+1:]

	port, err := parsePort(portToken)
	if err != nil {
		return Endpoint{}, err
	}

	if ipv4Re.MatchString(host) {
		return Endpoint{Host: host, Port: port}, nil
	}
	if hostnameRe.MatchString(host) {
		return Endpoint{Host: host, Port: port}, nil
	}

	return Endpoint{}, fmt.Errorf("%w: invalid host %q", ErrMalformed, host)
}

// parsePort converts a port token to an integer, rejecting anything
// outside [0, 65535] or not purely numeric.
func parsePort(token string) (int, error) {
	p, err := strconv.Atoi(token)
	if err != nil || p < 0 || p > maxPort {
		return 0, fmt.Errorf("%w: invalid port %q", ErrMalformed, token)
	}

	return p, nil
}
