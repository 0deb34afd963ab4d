package server

import (
	"time"

	"github.com/srcquery/querybot/internal/geoip"
	"github.com/srcquery/querybot/internal/query"
	"github.com/srcquery/querybot/internal/storage"
)

// Server holds the dependencies and configuration required to serve the
// directory and query API.
type Server struct {
	// dir is the persistent per-community server directory.
	dir *storage.Directory

	// resolver turns raw user tokens into classified query outcomes.
	resolver *query.Resolver

	// geo annotates successful query responses with the server's country.
	// It can be nil if no GeoIP database is configured.
	geo *geoip.Provider

	// allowedCommunities is a set of hashed community IDs (using xxhash)
	// permitted to use the API. An empty set allows everyone.
	allowedCommunities map[uint64]struct{}

	// authToken is the secret token required for mutating endpoints.
	authToken string

	// maxBody specifies the maximum allowed size (in bytes) for incoming
	// HTTP request bodies.
	maxBody int64

	// hardLimitCount is the maximum number of requests allowed per IP
	// address within the hardLimitWin duration.
	hardLimitCount int

	// hardLimitWin is the time window duration for the hard rate limiter.
	hardLimitWin time.Duration

	// trustProxy indicates whether headers like X-Forwarded-For should be
	// trusted when determining the client's real IP address.
	trustProxy bool
}
