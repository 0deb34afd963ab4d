// Package server implements the HTTP API, middleware, and request handlers
// exposing the server directory and query resolution to the chat
// integration layer.
package server

import (
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/srcquery/querybot/internal/config"
	"github.com/srcquery/querybot/internal/game"
	"github.com/srcquery/querybot/internal/geoip"
	"github.com/srcquery/querybot/internal/query"
	"github.com/srcquery/querybot/internal/storage"
)

// New creates a Server instance wired to the given directory, GeoIP
// provider, and protocol client.
func New(dir *storage.Directory, geo *geoip.Provider, client game.Client, cfg *config.Config) *Server {
	communities := make(map[uint64]struct{})
	for _, id := range cfg.Server.Communities {
		communities[xxhash.Sum64String(id)] = struct{}{}
	}

	return &Server{
		dir:                dir,
		resolver:           query.New(dir, client, cfg.Query.Timeout),
		geo:                geo,
		allowedCommunities: communities,
		authToken:          cfg.Server.AuthToken,
		maxBody:            cfg.Server.MaxBodySize,
		hardLimitCount:     cfg.RateLimit.HardLimitCount,
		hardLimitWin:       cfg.RateLimit.HardLimitWin,
		trustProxy:         cfg.Server.TrustProxy,
	}
}

// Run configures the HTTP routes and returns the main handler.
func (s *Server) Run() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/servers", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleCreate)))
	mux.Handle("GET /api/servers", http.HandlerFunc(s.handleList))
	mux.Handle("DELETE /api/servers", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleDelete)))

	mux.Handle("GET /api/query", s.RateLimitMiddleware(http.HandlerFunc(s.handleQuery)))
	mux.Handle("GET /api/players", s.RateLimitMiddleware(http.HandlerFunc(s.handlePlayers)))
	mux.Handle("GET /api/complete", http.HandlerFunc(s.handleComplete))

	return s.LoggingMiddleware(mux)
}

// communityAllowed checks the community against the configured allow-list.
// An empty allow-list admits every community.
func (s *Server) communityAllowed(id int64) bool {
	if len(s.allowedCommunities) == 0 {
		return true
	}

	_, ok := s.allowedCommunities[xxhash.Sum64String(strconv.FormatInt(id, 10))]
	return ok
}
