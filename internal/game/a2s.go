package game

import (
	"context"
	"time"

	"github.com/woozymasta/a2s/pkg/a2s"

	"github.com/srcquery/querybot/internal/config"
	"github.com/srcquery/querybot/internal/netaddr"
)

// A2S queries servers over UDP using the woozymasta/a2s codec.
// A fresh connection is opened per query; the protocol is a single
// request/response exchange and keeping sockets around buys nothing.
type A2S struct {
	opts config.Query
}

// NewA2S creates an A2S client with the given protocol options.
func NewA2S(opts config.Query) *A2S {
	return &A2S{opts: opts}
}

// Info requests A2S_INFO from the endpoint.
func (q *A2S) Info(ctx context.Context, ep netaddr.Endpoint) (*Info, error) {
	client, err := q.dial(ctx, ep)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	info, err := client.GetInfo()
	if err != nil {
		return nil, err
	}

	return &Info{
		ServerName: info.Name,
		MapName:    info.Map,
		Game:       info.Game,
		Players:    int(info.Players),
		MaxPlayers: int(info.MaxPlayers),
		VAC:        info.VAC,
		Protected:  info.Visibility,
	}, nil
}

// Players requests A2S_PLAYER from the endpoint. An empty slice is a valid
// response and means the server is reachable but has no players.
func (q *A2S) Players(ctx context.Context, ep netaddr.Endpoint) ([]Player, error) {
	client, err := q.dial(ctx, ep)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	raw, err := client.GetPlayers()
	if err != nil {
		return nil, err
	}

	players := make([]Player, 0, len(*raw))
	for _, p := range *raw {
		players = append(players, Player{
			Name:     p.Name,
			Duration: time.Duration(float64(p.Duration) * float64(time.Second)),
		})
	}

	return players, nil
}

// dial opens a UDP client for the endpoint with the effective timeout.
// The host may be a hostname; the codec resolves it when connecting, which
// is where late DNS failures surface.
func (q *A2S) dial(ctx context.Context, ep netaddr.Endpoint) (*a2s.Client, error) {
	client, err := a2s.New(ep.Host, ep.Port)
	if err != nil {
		return nil, err
	}

	client.BufferSize = q.opts.BufferSize
	client.Timeout = q.timeout(ctx)

	return client, nil
}

// timeout returns the configured query timeout, shortened to the context
// deadline when one is set and closer.
func (q *A2S) timeout(ctx context.Context) time.Duration {
	t := q.opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < t {
			t = until
		}
	}

	return t
}
