// Package standings computes ranked league tables from match results.
package standings

import (
	"sort"

	"github.com/puckdrop/tournament-server/models"
)

// Calculate builds one ranked row per player from the complete match
// history. It is a pure function: no caching, no incremental updates, a
// full recompute on every call. Incomplete matches contribute nothing.
//
// Points: 2 for a win, 1 for an overtime loss, 1 apiece for a draw, 0 for
// a regulation loss. Rows sort by points, then wins, then goal
// differential; residual ties keep an unspecified relative order.
func Calculate(players []models.Player, groupMatches []models.GroupMatch, playoffMatches []models.PlayoffMatch) []models.StandingsRow {
	rows := make(map[string]*models.StandingsRow, len(players))
	for _, p := range players {
		rows[p.ID] = &models.StandingsRow{PlayerID: p.ID, Name: p.Name}
	}

	for i := range groupMatches {
		side1, side2 := groupMatches[i].Sides()
		applyResult(rows, side1, side2, groupMatches[i].MatchResult)
	}
	for i := range playoffMatches {
		side1, side2 := playoffMatches[i].Sides()
		applyResult(rows, side1, side2, playoffMatches[i].MatchResult)
	}

	out := make([]models.StandingsRow, 0, len(players))
	for _, p := range players {
		out = append(out, *rows[p.ID])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Diff > out[j].Diff
	})
	return out
}

func applyResult(rows map[string]*models.StandingsRow, side1, side2 []string, res models.MatchResult) {
	if !res.IsComplete || res.Team1Score == nil || res.Team2Score == nil {
		return
	}
	creditSide(rows, side1, *res.Team1Score, *res.Team2Score, res.IsOvertime)
	creditSide(rows, side2, *res.Team2Score, *res.Team1Score, res.IsOvertime)
}

// creditSide applies one match outcome to every player on a side.
func creditSide(rows map[string]*models.StandingsRow, ids []string, goalsFor, goalsAgainst int, overtime bool) {
	for _, id := range ids {
		row, ok := rows[id]
		if !ok {
			// Match references a player that no longer exists. Skip the
			// contribution instead of failing the whole table.
			continue
		}
		row.Played++
		row.GF += goalsFor
		row.GA += goalsAgainst
		row.Diff += goalsFor - goalsAgainst

		switch {
		case goalsFor > goalsAgainst:
			row.Wins++
			row.Points += 2
		case goalsFor < goalsAgainst:
			if overtime {
				row.OTL++
				row.Points++
			} else {
				row.Losses++
			}
		default:
			// Drawn match: a point apiece, no win/loss/OTL column moves.
			row.Points++
		}
	}
}
