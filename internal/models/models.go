// Package models defines the data structures shared between the API layer
// and the directory storage.
package models

import "github.com/srcquery/querybot/internal/netaddr"

// MaxNameLength is the upper bound on a registered server name.
// It is enforced at the API boundary and again by a CHECK constraint
// in the storage schema.
const MaxNameLength = 100

// Entry is a named server registered under a community.
// Entries are immutable; replacing one means delete plus create.
type Entry struct {
	Name        string           `json:"name"`
	Endpoint    netaddr.Endpoint `json:"endpoint"`
	CommunityID int64            `json:"community_id"`
}

// CreateRequest is the payload for registering a server. Host and port
// arrive as raw tokens and are validated before anything touches storage.
type CreateRequest struct {
	Name        string `json:"name"`
	Host        string `json:"host"`
	Port        string `json:"port"`
	CommunityID int64  `json:"community_id"`
}
