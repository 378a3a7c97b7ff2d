package models

// Player is created during setup and frozen once a schedule exists.
// ID is the join key used by matches and standings; it is never reused
// across a tournament reset.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Seed int    `json:"seed"`
}
