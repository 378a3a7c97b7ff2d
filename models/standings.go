package models

// StandingsRow is one player's aggregated record. Rows are derived from the
// full match history on every query and never persisted.
type StandingsRow struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Played   int    `json:"played"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	OTL      int    `json:"otl"`
	GF       int    `json:"gf"`
	GA       int    `json:"ga"`
	Diff     int    `json:"diff"`
	Points   int    `json:"points"`
}
