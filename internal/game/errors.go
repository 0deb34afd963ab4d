package game

import (
	"context"
	"errors"
	"net"
	"os"
)

// IsResolveError reports whether err came from DNS resolution, which the
// protocol layer can hit even after the endpoint resolved earlier.
func IsResolveError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
