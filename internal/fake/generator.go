// Package fake provides utilities for generating random directory entries
// for testing and development purposes.
package fake

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"
	"github.com/srcquery/querybot/internal/netaddr"
	"github.com/srcquery/querybot/internal/storage"
)

// GenerateData populates the directory with a specified number of
// randomized server entries spread across a handful of communities.
func GenerateData(dir *storage.Directory, count int) {
	prefixes := []string{"Awesome", "Rusty", "Midnight", "Chernarus", "Vanilla", "Hardcore", "Casual"}
	suffixes := []string{"RP", "PvP", "PvE", "Survival", "Deathmatch", "Community"}

	ctx := context.Background()
	created := 0

	for i := 0; i < count; i++ {
		communityID := int64(rand.Intn(5) + 1)
		name := fmt.Sprintf("%s %s #%d",
			prefixes[rand.Intn(len(prefixes))],
			suffixes[rand.Intn(len(suffixes))],
			rand.Intn(1000),
		)

		ep := netaddr.Endpoint{
			Host: fmt.Sprintf("%d.%d.%d.%d", rand.Intn(220)+1, rand.Intn(255), rand.Intn(255), rand.Intn(255)),
			Port: 27000 + rand.Intn(1000),
		}

		if dir.Register(ctx, communityID, name, ep) {
			created++
		}
	}

	log.Info().
		Int("requested", count).
		Int("created", created).
		Msg("Fake directory entries generated")
}
