package netaddr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointString(t *testing.T) {
	assert.Equal(t, "198.51.100.10:27015", Endpoint{"198.51.100.10", 27015}.String())
	assert.Equal(t, "play.example.com:0", Endpoint{"play.example.com", 0}.String())
}

func TestEndpointIsLiteral(t *testing.T) {
	assert.True(t, Endpoint{"203.0.113.5", 27015}.IsLiteral())
	assert.False(t, Endpoint{"play.example.com", 27015}.IsLiteral())
	assert.False(t, Endpoint{"localhost", 27015}.IsLiteral())
}

// IPv4 literals resolve trivially without any network call, so this passes
// even with no resolver available.
func TestResolveLiteral(t *testing.T) {
	ep := Endpoint{"203.0.113.5", 27015}
	require.NoError(t, ep.Resolve(context.Background()))
}

func TestResolveHostnameCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ep := Endpoint{"play.example.com", 27015}
	err := ep.Resolve(ctx)
	require.ErrorIs(t, err, ErrResolve)
}
