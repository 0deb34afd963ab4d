package game

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(timeoutErr{}))
	assert.True(t, IsTimeout(os.ErrDeadlineExceeded))
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(fmt.Errorf("query: %w", timeoutErr{})))

	assert.False(t, IsTimeout(errors.New("short read")))
	assert.False(t, IsTimeout(nil))
}

func TestIsResolveError(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "play.example.com", IsNotFound: true}

	assert.True(t, IsResolveError(dnsErr))
	assert.True(t, IsResolveError(fmt.Errorf("dial: %w", dnsErr)))

	assert.False(t, IsResolveError(timeoutErr{}))
	assert.False(t, IsResolveError(errors.New("short read")))
}
