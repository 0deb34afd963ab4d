package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/srcquery/querybot/internal/models"
	"github.com/srcquery/querybot/internal/netaddr"
	"github.com/srcquery/querybot/internal/query"
)

// handleCreate registers a new server under a community.
// Body: {"community_id": 1, "name": "Awesome RP", "host": "203.0.113.5", "port": "27015"}
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req models.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.communityAllowed(req.CommunityID) {
		writeError(w, http.StatusForbidden, "community not allowed")
		return
	}

	// Length is checked here before storage is attempted; the schema CHECK
	// enforces the same bound again.
	if n := utf8.RuneCountInString(req.Name); n < 1 || n > models.MaxNameLength {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 100 characters")
		return
	}

	ep, err := netaddr.ParseHostPort(req.Host, req.Port)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed host or port")
		return
	}

	if !s.dir.Register(r.Context(), req.CommunityID, req.Name, ep) {
		writeError(w, http.StatusConflict, "server name or address already in use")
		return
	}

	log.Info().
		Int64("community_id", req.CommunityID).
		Str("name", req.Name).
		Stringer("endpoint", ep).
		Msg("Server registered")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "created"})
}

// handleList returns all servers registered under a community.
// Query params: ?community=1
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityParam(w, r)
	if !ok {
		return
	}

	entries := s.dir.List(r.Context(), communityID)
	if entries == nil {
		entries = []models.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

// handleDelete removes a registered server.
// Query params: ?community=1&name=Awesome%20RP
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityParam(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}

	if !s.dir.Delete(r.Context(), communityID, name) {
		writeError(w, http.StatusNotFound, "server not found")
		return
	}

	log.Info().
		Int64("community_id", communityID).
		Str("name", name).
		Msg("Server deleted")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

// handleQuery resolves a token and returns server summary info.
// Query params: ?community=1&token=203.0.113.5:27015 or ?token=Awesome%20RP
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	communityID, token, ok := s.queryParams(w, r)
	if !ok {
		return
	}

	out := s.resolver.Info(r.Context(), communityID, token)
	s.writeOutcome(w, out)
}

// handlePlayers resolves a token and returns the current player list.
func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	communityID, token, ok := s.queryParams(w, r)
	if !ok {
		return
	}

	out := s.resolver.Players(r.Context(), communityID, token)
	s.writeOutcome(w, out)
}

// handleComplete returns name suggestions for interactive autocompletion.
// Query params: ?community=1&prefix=Alph
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	communityID, ok := communityParam(w, r)
	if !ok {
		return
	}

	entries := s.dir.SearchPrefix(r.Context(), communityID, r.URL.Query().Get("prefix"))

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(names)
}

// queryParams extracts and validates the community and token parameters
// shared by the query endpoints.
func (s *Server) queryParams(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	communityID, ok := communityParam(w, r)
	if !ok {
		return 0, "", false
	}

	if !s.communityAllowed(communityID) {
		writeError(w, http.StatusForbidden, "community not allowed")
		return 0, "", false
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return 0, "", false
	}

	return communityID, token, true
}

// writeOutcome maps a query outcome onto exactly one response class.
func (s *Server) writeOutcome(w http.ResponseWriter, out query.Outcome) {
	switch out.Status {
	case query.StatusSuccess:
		resp := struct {
			Endpoint string `json:"endpoint"`
			Country  string `json:"country,omitempty"`
			Info     any    `json:"info,omitempty"`
			Players  any    `json:"players,omitempty"`
		}{Endpoint: out.Endpoint.String()}

		if s.geo != nil {
			resp.Country = s.geo.CountryCode(out.Endpoint.Host)
		}

		if out.Info != nil {
			resp.Info = out.Info
		}
		if out.Players != nil {
			// An empty list is a valid answer: reachable but empty server.
			resp.Players = out.Players
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	case query.StatusMalformed:
		writeError(w, http.StatusBadRequest, "malformed address")
	case query.StatusNotFound:
		writeError(w, http.StatusNotFound, "no server registered under that name")
	case query.StatusResolveFailed:
		writeError(w, http.StatusBadGateway, "failed to resolve host")
	case query.StatusTimeout:
		writeError(w, http.StatusGatewayTimeout, "server did not respond in time")
	default:
		writeError(w, http.StatusInternalServerError, "unknown error, contact support")
	}
}

// communityParam parses the mandatory community query parameter.
func communityParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("community")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing community")
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid community")
		return 0, false
	}

	return id, true
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
