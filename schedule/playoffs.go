package schedule

import "github.com/puckdrop/tournament-server/models"

// PlayoffPolicy appends semifinal and final matches as group-stage results
// arrive. It is a pure state machine over the current match lists:
//
//	group stage complete -> semifinal (standings rank 2 vs rank 3; rank 1
//	gets a bye to the final), or straight to the final with only two
//	players, or terminal with fewer than two.
//	semifinal complete   -> final (standings rank 1 vs semifinal winner).
//	final complete       -> nothing more, ever.
//
// Evaluate is idempotent: a phase whose match already exists is never
// generated again, so re-running it against an unchanged match set returns
// nothing.
type PlayoffPolicy struct{}

// Evaluate returns the playoff matches that should be appended given the
// current standings and match lists, or nil when no transition is due.
// Rows must be ranked over group-stage results only: seeding is frozen at
// the moment the group stage completes, so a semifinal result can never
// reshuffle who holds the bye into the final.
func (PlayoffPolicy) Evaluate(rows []models.StandingsRow, groupMatches []models.GroupMatch, playoffMatches []models.PlayoffMatch) []models.PlayoffMatch {
	if len(groupMatches) == 0 {
		return nil
	}
	for i := range groupMatches {
		if !groupMatches[i].IsComplete {
			return nil
		}
	}

	var semifinal, final *models.PlayoffMatch
	for i := range playoffMatches {
		switch playoffMatches[i].Phase {
		case models.PhaseSemifinal:
			semifinal = &playoffMatches[i]
		case models.PhaseFinal:
			final = &playoffMatches[i]
		}
	}
	if final != nil {
		return nil
	}

	if semifinal == nil {
		switch {
		case len(rows) < 2:
			// Nobody left to pair. Terminal.
			return nil
		case len(rows) < 3:
			return []models.PlayoffMatch{{
				ID:    NewMatchID(),
				Phase: models.PhaseFinal,
				P1ID:  rows[0].PlayerID,
				P2ID:  rows[1].PlayerID,
			}}
		default:
			return []models.PlayoffMatch{{
				ID:    NewMatchID(),
				Phase: models.PhaseSemifinal,
				P1ID:  rows[1].PlayerID,
				P2ID:  rows[2].PlayerID,
			}}
		}
	}

	if !semifinal.IsComplete {
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	return []models.PlayoffMatch{{
		ID:    NewMatchID(),
		Phase: models.PhaseFinal,
		P1ID:  rows[0].PlayerID,
		P2ID:  semifinal.WinnerID(),
	}}
}
