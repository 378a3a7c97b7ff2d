package schedule

import (
	"context"
	"math/rand"
	"time"

	"github.com/puckdrop/tournament-server/models"
)

type groupStageGenerator struct {
	rng *rand.Rand
}

// NewGroupStageGenerator builds the team-shuffle group stage generator.
// Pass a seeded rng for reproducible output; nil gets a time-seeded one.
func NewGroupStageGenerator(rng *rand.Rand) Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &groupStageGenerator{rng: rng}
}

func (g *groupStageGenerator) Name() string {
	return "GroupStage"
}

// groupStageMatchCount fixes the slate size by player count.
func groupStageMatchCount(n int) int {
	switch {
	case n <= 4:
		return 4
	case n <= 6:
		return 5
	default:
		return 6
	}
}

// Generate builds each group match from an independent random permutation
// of the player list: the first teamSize ids form team 1, the next teamSize
// form team 2, and with an odd player count the remainder sits that match
// out. Teammates therefore change game to game, and nothing guarantees
// equal appearances per player over the stage.
func (g *groupStageGenerator) Generate(_ context.Context, params GenerateParams) ([]models.GroupMatch, error) {
	players := params.Players
	n := len(players)
	if n < 2 {
		return nil, ErrNotEnoughPlayers
	}

	teamSize := n / 2
	count := groupStageMatchCount(n)

	matches := make([]models.GroupMatch, 0, count)
	for m := 0; m < count; m++ {
		perm := g.rng.Perm(n)
		team1 := make([]string, 0, teamSize)
		team2 := make([]string, 0, teamSize)
		for k := 0; k < teamSize; k++ {
			team1 = append(team1, players[perm[k]].ID)
		}
		for k := teamSize; k < 2*teamSize; k++ {
			team2 = append(team2, players[perm[k]].ID)
		}
		matches = append(matches, models.GroupMatch{
			ID:    NewMatchID(),
			Team1: team1,
			Team2: team2,
		})
	}
	return matches, nil
}
