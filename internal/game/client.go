// Package game queries game servers over the Source Engine Query (A2S)
// protocol. The Client interface is the contract the rest of the
// application consumes; A2S is the production implementation.
package game

import (
	"context"
	"time"

	"github.com/srcquery/querybot/internal/netaddr"
)

// Info is the summary a server returns to an A2S_INFO request.
type Info struct {
	ServerName string `json:"server_name"`
	MapName    string `json:"map_name"`
	Game       string `json:"game"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	VAC        bool   `json:"vac"`
	Protected  bool   `json:"password_protected"`
}

// Player is one row of an A2S_PLAYER response.
type Player struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

// Client issues protocol queries against a validated endpoint. Both calls
// are bounded by the context deadline and the configured query timeout,
// whichever is shorter.
type Client interface {
	Info(ctx context.Context, ep netaddr.Endpoint) (*Info, error)
	Players(ctx context.Context, ep netaddr.Endpoint) ([]Player, error)
}
