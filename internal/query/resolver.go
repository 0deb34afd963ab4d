// Package query turns a raw user token into a classified game server query
// outcome. The flow is linear: a token containing a colon is parsed as a
// literal address, anything else is looked up in the directory; the
// endpoint is then DNS-resolved and queried. A failed lookup never falls
// back to literal parsing and vice versa.
package query

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/srcquery/querybot/internal/game"
	"github.com/srcquery/querybot/internal/models"
	"github.com/srcquery/querybot/internal/netaddr"
)

// Directory is the registry subset the resolver needs.
type Directory interface {
	Lookup(ctx context.Context, communityID int64, name string) *models.Entry
}

// Resolver resolves tokens against a directory and queries servers through
// a protocol client. Queries never mutate the directory, so cancelling an
// in-flight request cannot leave partial state behind.
type Resolver struct {
	dir     Directory
	client  game.Client
	timeout time.Duration
}

// New creates a Resolver. The timeout bounds DNS resolution and the
// protocol call independently.
func New(dir Directory, client game.Client, timeout time.Duration) *Resolver {
	return &Resolver{dir: dir, client: client, timeout: timeout}
}

// Info resolves the token and requests server summary info.
func (r *Resolver) Info(ctx context.Context, communityID int64, token string) Outcome {
	ep, out := r.endpoint(ctx, communityID, token)
	if out != nil {
		return *out
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	info, err := r.client.Info(callCtx, ep)
	if err != nil {
		return r.classify(err, ep, token)
	}

	return Outcome{Status: StatusSuccess, Info: info, Endpoint: ep}
}

// Players resolves the token and requests the current player list.
func (r *Resolver) Players(ctx context.Context, communityID int64, token string) Outcome {
	ep, out := r.endpoint(ctx, communityID, token)
	if out != nil {
		return *out
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	players, err := r.client.Players(callCtx, ep)
	if err != nil {
		return r.classify(err, ep, token)
	}

	if players == nil {
		players = []game.Player{}
	}

	return Outcome{Status: StatusSuccess, Players: players, Endpoint: ep}
}

// endpoint runs the shared front half of a resolution: token
// classification, directory lookup or literal parse, then DNS resolution.
// A non-nil Outcome is terminal.
func (r *Resolver) endpoint(ctx context.Context, communityID int64, token string) (netaddr.Endpoint, *Outcome) {
	var ep netaddr.Endpoint

	// A colon marks the token as a literal address, never a saved name.
	if strings.ContainsRune(token, ':') {
		parsed, err := netaddr.ParseSocketAddr(token)
		if err != nil {
			out := outcome(StatusMalformed)
			return ep, &out
		}
		ep = parsed
	} else {
		entry := r.dir.Lookup(ctx, communityID, token)
		if entry == nil {
			out := outcome(StatusNotFound)
			return ep, &out
		}
		ep = entry.Endpoint
	}

	resolveCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := ep.Resolve(resolveCtx); err != nil {
		log.Debug().Err(err).
			Stringer("endpoint", ep).
			Msg("DNS resolution failed")

		out := outcome(StatusResolveFailed)
		return ep, &out
	}

	return ep, nil
}

// classify maps a protocol call error onto a terminal status. Unexpected
// failures are logged with full detail here; callers only ever see the
// classification.
func (r *Resolver) classify(err error, ep netaddr.Endpoint, token string) Outcome {
	switch {
	case game.IsResolveError(err):
		return outcome(StatusResolveFailed)
	case game.IsTimeout(err):
		return outcome(StatusTimeout)
	default:
		log.Error().Err(err).
			Stringer("endpoint", ep).
			Str("token", token).
			Msg("Unexpected query failure")

		return outcome(StatusUnknown)
	}
}
