// Package maintenance provides one-shot audit tasks over the directory.
package maintenance

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/srcquery/querybot/internal/config"
	"github.com/srcquery/querybot/internal/game"
	"github.com/srcquery/querybot/internal/models"
	"github.com/srcquery/querybot/internal/storage"
)

// Run checks if any maintenance flags are set and executes the
// corresponding task. Returns true if a task was executed, indicating the
// program should exit instead of serving.
func Run(cfg *config.Config, dir *storage.Directory, client game.Client) bool {
	var (
		filter string
		prune  bool
	)

	switch {
	case cfg.Storage.PruneUnreachable != "":
		filter, prune = cfg.Storage.PruneUnreachable, true
	case cfg.Storage.Audit != "":
		filter, prune = cfg.Storage.Audit, false
	default:
		return false
	}

	ctx := context.Background()
	entries := fetchEntries(ctx, dir, filter)
	if len(entries) == 0 {
		log.Info().Msg("No directory entries to check")
		return true
	}

	log.Info().
		Int("count", len(entries)).
		Bool("prune", prune).
		Msg("Starting directory audit with 10 workers...")

	runWorkerPool(ctx, entries, dir, client, prune)
	log.Info().Msg("Directory audit completed")

	return true
}

// fetchEntries loads the audit working set: everything, or one community
// when the flag carried a numeric ID.
func fetchEntries(ctx context.Context, dir *storage.Directory, filter string) []models.Entry {
	if filter == config.AllCommunities {
		return dir.ListAll(ctx)
	}

	communityID, err := strconv.ParseInt(filter, 10, 64)
	if err != nil {
		log.Error().Str("filter", filter).Msg("Community filter is not a numeric ID")
		return nil
	}

	return dir.List(ctx, communityID)
}

func runWorkerPool(ctx context.Context, entries []models.Entry, dir *storage.Directory, client game.Client, prune bool) {
	const workers = 10
	jobs := make(chan models.Entry, len(entries))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				checkEntry(ctx, entry, dir, client, prune)
			}
		}()
	}

	for _, e := range entries {
		jobs <- e
	}
	close(jobs)

	wg.Wait()
}

// checkEntry queries one registered server and logs its reachability.
// In prune mode, entries whose servers do not answer are deleted.
func checkEntry(ctx context.Context, entry models.Entry, dir *storage.Directory, client game.Client, prune bool) {
	logCtx := log.With().
		Int64("community_id", entry.CommunityID).
		Str("name", entry.Name).
		Stringer("endpoint", entry.Endpoint).
		Logger()

	info, err := client.Info(ctx, entry.Endpoint)
	if err != nil {
		logCtx.Warn().Err(err).Msg("Server unreachable")

		if prune {
			if dir.Delete(ctx, entry.CommunityID, entry.Name) {
				logCtx.Info().Msg("Unreachable entry pruned")
			}
		}
		return
	}

	logCtx.Info().
		Str("server_name", info.ServerName).
		Str("map", info.MapName).
		Int("players", info.Players).
		Int("max_players", info.MaxPlayers).
		Msg("Server reachable")
}
