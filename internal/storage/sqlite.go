// Package storage implements the per-community server directory on SQLite.
//
// Every operation is a single self-contained statement against the pool;
// no transaction spans a user interaction. Storage failures other than
// constraint violations are logged with full detail and degraded to the
// empty/false/nil value at this boundary, so callers always work with
// plain return values.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/srcquery/querybot/internal/models"
	"github.com/srcquery/querybot/internal/netaddr"
	sqlite "modernc.org/sqlite"
)

// sqliteConstraint is the SQLITE_CONSTRAINT primary result code.
const sqliteConstraint = 19

// Directory manages the SQLite-backed name to endpoint registry.
type Directory struct {
	db *sql.DB
}

// Open initializes the SQLite connection pool for the directory database
// at the given path and applies pending schema migrations.
func Open(dbPath string) (*Directory, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Directory{db: db}, nil
}

// Close closes the underlying database connection.
func (d *Directory) Close() error {
	return d.db.Close()
}

// Register inserts a new entry for the community. It returns false when the
// name or the endpoint is already registered under that community, or when
// the name violates the schema length constraint; both surface from SQLite
// as constraint violations and are normal outcomes, not errors.
func (d *Directory) Register(ctx context.Context, communityID int64, name string, ep netaddr.Endpoint) bool {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO server (community_id, name, address, port) VALUES (?, ?, ?, ?)`,
		communityID, name, ep.Host, ep.Port,
	)
	if err == nil {
		return true
	}

	if isConstraint(err) {
		log.Debug().
			Int64("community_id", communityID).
			Str("name", name).
			Msg("Register rejected by constraint")
		return false
	}

	log.Error().Err(err).
		Int64("community_id", communityID).
		Str("name", name).
		Msg("Failed to register server")

	return false
}

// Lookup returns the entry with the exact (case-sensitive) name within the
// community, or nil when no such entry exists.
func (d *Directory) Lookup(ctx context.Context, communityID int64, name string) *models.Entry {
	row := d.db.QueryRowContext(ctx,
		`SELECT community_id, name, address, port FROM server WHERE community_id = ? AND name = ?`,
		communityID, name,
	)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		log.Error().Err(err).
			Int64("community_id", communityID).
			Str("name", name).
			Msg("Failed to look up server")
		return nil
	}

	return entry
}

// List returns all entries registered under the community, ordered by name.
func (d *Directory) List(ctx context.Context, communityID int64) []models.Entry {
	rows, err := d.db.QueryContext(ctx,
		`SELECT community_id, name, address, port FROM server WHERE community_id = ? ORDER BY name`,
		communityID,
	)
	if err != nil {
		log.Error().Err(err).
			Int64("community_id", communityID).
			Msg("Failed to list servers")
		return nil
	}

	return collectEntries(rows)
}

// ListAll returns every entry in the directory across all communities,
// used by maintenance tasks.
func (d *Directory) ListAll(ctx context.Context) []models.Entry {
	rows, err := d.db.QueryContext(ctx,
		`SELECT community_id, name, address, port FROM server ORDER BY community_id, name`,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list servers")
		return nil
	}

	return collectEntries(rows)
}

// Delete removes the named entry from the community and reports whether a
// row was actually removed. Absence is not an error.
func (d *Directory) Delete(ctx context.Context, communityID int64, name string) bool {
	res, err := d.db.ExecContext(ctx,
		`DELETE FROM server WHERE community_id = ? AND name = ?`,
		communityID, name,
	)
	if err != nil {
		log.Error().Err(err).
			Int64("community_id", communityID).
			Str("name", name).
			Msg("Failed to delete server")
		return false
	}

	n, err := res.RowsAffected()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read rows affected")
		return false
	}

	return n > 0
}

// SearchPrefix returns the community's entries whose name starts with the
// given prefix, ordered by name. The prefix is matched literally; LIKE
// metacharacters in it are escaped so "%" only matches names that really
// begin with a percent sign. An empty prefix returns all entries.
func (d *Directory) SearchPrefix(ctx context.Context, communityID int64, prefix string) []models.Entry {
	rows, err := d.db.QueryContext(ctx,
		`SELECT community_id, name, address, port FROM server
		 WHERE community_id = ? AND name LIKE ? ESCAPE '\' ORDER BY name`,
		communityID, escapeLike(prefix)+"%",
	)
	if err != nil {
		log.Error().Err(err).
			Int64("community_id", communityID).
			Str("prefix", prefix).
			Msg("Failed to search servers")
		return nil
	}

	return collectEntries(rows)
}

// escapeLike neutralizes LIKE pattern metacharacters so user input is
// matched as a literal prefix.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// scanner is the common subset of sql.Row and sql.Rows used by scanEntry.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry maps a result row onto an Entry; column order matches every
// SELECT in this package.
func scanEntry(s scanner) (*models.Entry, error) {
	var (
		e    models.Entry
		host string
		port int
	)
	if err := s.Scan(&e.CommunityID, &e.Name, &host, &port); err != nil {
		return nil, err
	}

	e.Endpoint = netaddr.Endpoint{Host: host, Port: port}

	return &e, nil
}

func collectEntries(rows *sql.Rows) []models.Entry {
	defer func() { _ = rows.Close() }()

	var entries []models.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan server row")
			continue
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Failed to iterate server rows")
		return nil
	}

	return entries
}

// isConstraint reports whether err is an SQLite constraint violation
// (duplicate key or failed CHECK).
func isConstraint(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code()&0xff == sqliteConstraint
	}

	return false
}
