package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcquery/querybot/internal/config"
	"github.com/srcquery/querybot/internal/game"
	"github.com/srcquery/querybot/internal/netaddr"
	"github.com/srcquery/querybot/internal/storage"
)

const testToken = "secret"

type stubClient struct {
	info    *game.Info
	players []game.Player
	err     error
}

func (c *stubClient) Info(context.Context, netaddr.Endpoint) (*game.Info, error) {
	return c.info, c.err
}

func (c *stubClient) Players(context.Context, netaddr.Endpoint) ([]game.Player, error) {
	return c.players, c.err
}

func newTestServer(t *testing.T, client game.Client) http.Handler {
	t.Helper()

	dir, err := storage.Open(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dir.Close() })

	cfg := &config.Config{}
	cfg.Server.AuthToken = testToken
	cfg.Server.MaxBodySize = 4096
	cfg.Query.Timeout = time.Second
	cfg.RateLimit.HardLimitCount = 1000
	cfg.RateLimit.HardLimitWin = time.Minute

	return New(dir, nil, client, cfg).Run()
}

func doCreate(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/servers", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestCreateListDelete(t *testing.T) {
	h := newTestServer(t, &stubClient{})

	rec := doCreate(t, h, `{"community_id": 1, "name": "Awesome RP", "host": "203.0.113.5", "port": "27015"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate name is a conflict, not an error.
	rec = doCreate(t, h, `{"community_id": 1, "name": "Awesome RP", "host": "203.0.113.6", "port": "27016"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/servers?community=1", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Awesome RP", entries[0]["name"])

	req = httptest.NewRequest(http.MethodDelete, "/api/servers?community=1&name=Awesome+RP", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Second delete: nothing left to remove.
	req = httptest.NewRequest(http.MethodDelete, "/api/servers?community=1&name=Awesome+RP", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateValidation(t *testing.T) {
	h := newTestServer(t, &stubClient{})

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "empty name", body: `{"community_id": 1, "name": "", "host": "203.0.113.5", "port": "27015"}`, code: http.StatusBadRequest},
		{name: "name too long", body: `{"community_id": 1, "name": "` + strings.Repeat("x", 101) + `", "host": "203.0.113.5", "port": "27015"}`, code: http.StatusBadRequest},
		{name: "malformed host", body: `{"community_id": 1, "name": "srv", "host": "not a host!!", "port": "27015"}`, code: http.StatusBadRequest},
		{name: "port out of range", body: `{"community_id": 1, "name": "srv", "host": "203.0.113.5", "port": "99999"}`, code: http.StatusBadRequest},
		{name: "garbage body", body: `{`, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doCreate(t, h, tt.body)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestCreateRequiresAuth(t *testing.T) {
	h := newTestServer(t, &stubClient{})

	req := httptest.NewRequest(http.MethodPost, "/api/servers",
		bytes.NewBufferString(`{"community_id": 1, "name": "srv", "host": "203.0.113.5", "port": "27015"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestQueryOutcomes(t *testing.T) {
	info := &game.Info{ServerName: "Awesome RP Official", MapName: "chernarusplus", Players: 42, MaxPlayers: 60}
	h := newTestServer(t, &stubClient{info: info})

	rec := doCreate(t, h, `{"community_id": 1, "name": "Awesome RP", "host": "203.0.113.5", "port": "27015"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Registered name resolves and queries.
	req := httptest.NewRequest(http.MethodGet, "/api/query?community=1&token=Awesome+RP", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Endpoint string     `json:"endpoint"`
		Info     *game.Info `json:"info"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "203.0.113.5:27015", resp.Endpoint)
	assert.Equal(t, info, resp.Info)

	// Unregistered name.
	req = httptest.NewRequest(http.MethodGet, "/api/query?community=1&token=nonexistent", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Malformed literal.
	req = httptest.NewRequest(http.MethodGet, "/api/query?community=1&token="+
		"not+a+valid+host%21%21%3A99999", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlayersEmptyServer(t *testing.T) {
	h := newTestServer(t, &stubClient{players: []game.Player{}})

	req := httptest.NewRequest(http.MethodGet, "/api/players?community=1&token=203.0.113.5%3A27015", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Players []game.Player `json:"players"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Players)
	assert.Empty(t, resp.Players)
}

func TestComplete(t *testing.T) {
	h := newTestServer(t, &stubClient{})

	for _, body := range []string{
		`{"community_id": 1, "name": "Alpha", "host": "203.0.113.1", "port": "27015"}`,
		`{"community_id": 1, "name": "Alphabet", "host": "203.0.113.2", "port": "27015"}`,
		`{"community_id": 1, "name": "Beta", "host": "203.0.113.3", "port": "27015"}`,
	} {
		rec := doCreate(t, h, body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/complete?community=1&prefix=Alph", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"Alpha", "Alphabet"}, names)
}

func TestCommunityAllowList(t *testing.T) {
	dir, err := storage.Open(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dir.Close() })

	cfg := &config.Config{}
	cfg.Server.AuthToken = testToken
	cfg.Server.MaxBodySize = 4096
	cfg.Server.Communities = []string{"1"}
	cfg.Query.Timeout = time.Second
	cfg.RateLimit.HardLimitCount = 1000
	cfg.RateLimit.HardLimitWin = time.Minute

	h := New(dir, nil, &stubClient{info: &game.Info{}}, cfg).Run()

	req := httptest.NewRequest(http.MethodGet, "/api/query?community=2&token=203.0.113.5%3A27015", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/query?community=1&token=203.0.113.5%3A27015", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
