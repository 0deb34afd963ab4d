package query

import (
	"github.com/srcquery/querybot/internal/game"
	"github.com/srcquery/querybot/internal/netaddr"
)

// Status classifies the terminal state of one query resolution.
type Status int

// Terminal states of a query resolution. Every resolution ends in exactly
// one of these; there are no retries and no fallbacks between branches.
const (
	// StatusSuccess means the server answered; Info or Players is set.
	StatusSuccess Status = iota
	// StatusMalformed means the token failed the address grammar.
	StatusMalformed
	// StatusNotFound means the token named no registered server.
	StatusNotFound
	// StatusResolveFailed means DNS resolution of the host failed.
	StatusResolveFailed
	// StatusTimeout means the server did not answer within the bound.
	StatusTimeout
	// StatusUnknown covers everything else; details are logged, not returned.
	StatusUnknown
)

// String returns the lower-case label used in logs and API responses.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusMalformed:
		return "malformed"
	case StatusNotFound:
		return "not_found"
	case StatusResolveFailed:
		return "resolve_failed"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one query resolution. Exactly one of
// Info or Players is set on success, depending on which call was made; an
// empty Players slice is a valid success payload. Endpoint is the resolved
// endpoint on success, for display purposes.
type Outcome struct {
	Info     *game.Info
	Players  []game.Player
	Endpoint netaddr.Endpoint
	Status   Status
}

func outcome(s Status) Outcome {
	return Outcome{Status: s}
}
