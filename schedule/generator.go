// Package schedule generates tournament match slates and drives the
// group-stage-to-playoffs progression.
package schedule

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/puckdrop/tournament-server/models"
)

// ErrNotEnoughPlayers is returned when a schedule is requested for fewer
// than two players.
var ErrNotEnoughPlayers = errors.New("not enough players to generate a schedule (minimum 2 required)")

// GenerateParams carries the frozen player list a generator works from.
type GenerateParams struct {
	Players []models.Player
}

// Generator produces the opening slate of group-stage matches for a player
// set. Implementations draw from an injected random source so tests can
// seed them for reproducible schedules.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]models.GroupMatch, error)

	Name() string
}

// NewMatchID returns a unique match id. UUIDv7 carries a high-resolution
// timestamp plus randomness, so ids stay unique even across rapid
// successive creation calls within the same process.
func NewMatchID() string {
	return uuid.Must(uuid.NewV7()).String()
}
