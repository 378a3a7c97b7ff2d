package models

import "time"

// ScheduleMode selects how the opening slate of matches is generated.
type ScheduleMode string

const (
	// ModeRoundRobin is the simple everyone-plays-everyone format with a
	// single implicit phase and no playoffs.
	ModeRoundRobin ScheduleMode = "round_robin"
	// ModeGroupStage is the team-shuffle group stage followed by a
	// semifinal and final.
	ModeGroupStage ScheduleMode = "group_stage"
)

// TournamentState is the lifecycle stage of the whole tournament, derived
// from the match lists rather than stored.
type TournamentState string

const (
	StateSetup      TournamentState = "SETUP"
	StateGroupStage TournamentState = "GROUP_STAGE"
	StateSemifinal  TournamentState = "SEMIFINAL"
	StateFinal      TournamentState = "FINAL"
	StateComplete   TournamentState = "TOURNAMENT_COMPLETE"
)

// TournamentSnapshot is the single persisted record for a tournament
// instance: everything needed to rehydrate the in-memory state.
type TournamentSnapshot struct {
	Players        []Player       `json:"players"`
	PlayerCount    int            `json:"player_count"`
	Mode           ScheduleMode   `json:"mode"`
	GroupMatches   []GroupMatch   `json:"group_matches"`
	PlayoffMatches []PlayoffMatch `json:"playoff_matches"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// MatchCounts reports total and completed matches across both lists.
func (s *TournamentSnapshot) MatchCounts() (total, completed int) {
	total = len(s.GroupMatches) + len(s.PlayoffMatches)
	for i := range s.GroupMatches {
		if s.GroupMatches[i].IsComplete {
			completed++
		}
	}
	for i := range s.PlayoffMatches {
		if s.PlayoffMatches[i].IsComplete {
			completed++
		}
	}
	return total, completed
}

// PlayerByID returns the player with the given id, or nil.
func (s *TournamentSnapshot) PlayerByID(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}
