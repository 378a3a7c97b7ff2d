package schedule

import (
	"context"
	"math/rand"
	"time"

	"github.com/puckdrop/tournament-server/models"
)

type roundRobinGenerator struct {
	rng *rand.Rand
}

// NewRoundRobinGenerator builds the everyone-plays-everyone generator.
// Pass a seeded rng for reproducible output; nil gets a time-seeded one.
func NewRoundRobinGenerator(rng *rand.Rand) Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &roundRobinGenerator{rng: rng}
}

func (g *roundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate creates exactly one match per unordered pair of players,
// n*(n-1)/2 in total, each side a singleton roster. The slate is shuffled
// so no player opens with a long run of back-to-back games; the order
// carries no competitive meaning.
func (g *roundRobinGenerator) Generate(_ context.Context, params GenerateParams) ([]models.GroupMatch, error) {
	players := params.Players
	if len(players) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	matches := make([]models.GroupMatch, 0, len(players)*(len(players)-1)/2)
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			matches = append(matches, models.GroupMatch{
				ID:    NewMatchID(),
				Team1: []string{players[i].ID},
				Team2: []string{players[j].ID},
			})
		}
	}

	g.rng.Shuffle(len(matches), func(i, j int) {
		matches[i], matches[j] = matches[j], matches[i]
	})
	return matches, nil
}
