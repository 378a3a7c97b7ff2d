package schedule

import (
	"testing"

	"github.com/puckdrop/tournament-server/models"
)

func rankedRows(ids ...string) []models.StandingsRow {
	rows := make([]models.StandingsRow, 0, len(ids))
	for i, id := range ids {
		rows = append(rows, models.StandingsRow{PlayerID: id, Name: id, Points: 20 - i})
	}
	return rows
}

func completedGroupMatches(n int) []models.GroupMatch {
	matches := make([]models.GroupMatch, 0, n)
	for i := 0; i < n; i++ {
		m := models.GroupMatch{ID: NewMatchID(), Team1: []string{"a"}, Team2: []string{"b"}}
		m.SetScore(2, 1, false)
		matches = append(matches, m)
	}
	return matches
}

func TestEvaluateWaitsForGroupStage(t *testing.T) {
	var policy PlayoffPolicy
	rows := rankedRows("p1", "p2", "p3", "p4")

	if got := policy.Evaluate(rows, nil, nil); got != nil {
		t.Errorf("no group matches: got %v, want nil", got)
	}

	matches := completedGroupMatches(3)
	matches = append(matches, models.GroupMatch{ID: NewMatchID(), Team1: []string{"a"}, Team2: []string{"b"}})
	if got := policy.Evaluate(rows, matches, nil); got != nil {
		t.Errorf("incomplete group stage: got %v, want nil", got)
	}
}

func TestEvaluateGeneratesSemifinal(t *testing.T) {
	var policy PlayoffPolicy
	rows := rankedRows("p1", "p2", "p3", "p4")

	got := policy.Evaluate(rows, completedGroupMatches(4), nil)
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1 semifinal", len(got))
	}
	semi := got[0]
	if semi.Phase != models.PhaseSemifinal {
		t.Errorf("phase = %s, want %s", semi.Phase, models.PhaseSemifinal)
	}
	// The leader gets a bye to the final; second plays third.
	if semi.P1ID != "p2" || semi.P2ID != "p3" {
		t.Errorf("semifinal pairs %s vs %s, want p2 vs p3", semi.P1ID, semi.P2ID)
	}
	if semi.IsComplete {
		t.Error("generated semifinal must start unscored")
	}
}

func TestEvaluateTwoPlayersSkipStraightToFinal(t *testing.T) {
	var policy PlayoffPolicy
	got := policy.Evaluate(rankedRows("p1", "p2"), completedGroupMatches(4), nil)
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1 final", len(got))
	}
	if got[0].Phase != models.PhaseFinal {
		t.Errorf("phase = %s, want %s", got[0].Phase, models.PhaseFinal)
	}
	if got[0].P1ID != "p1" || got[0].P2ID != "p2" {
		t.Errorf("final pairs %s vs %s, want p1 vs p2", got[0].P1ID, got[0].P2ID)
	}
}

func TestEvaluateFewerThanTwoPlayersIsTerminal(t *testing.T) {
	var policy PlayoffPolicy
	if got := policy.Evaluate(rankedRows("p1"), completedGroupMatches(4), nil); got != nil {
		t.Errorf("single player: got %v, want nil", got)
	}
	if got := policy.Evaluate(nil, completedGroupMatches(4), nil); got != nil {
		t.Errorf("no players: got %v, want nil", got)
	}
}

func TestEvaluateGeneratesFinalAfterSemifinal(t *testing.T) {
	var policy PlayoffPolicy
	rows := rankedRows("p1", "p2", "p3", "p4")

	semi := models.PlayoffMatch{ID: NewMatchID(), Phase: models.PhaseSemifinal, P1ID: "p2", P2ID: "p3"}

	// Unscored semifinal holds the bracket.
	if got := policy.Evaluate(rows, completedGroupMatches(4), []models.PlayoffMatch{semi}); got != nil {
		t.Fatalf("pending semifinal: got %v, want nil", got)
	}

	semi.SetScore(1, 3, false)
	got := policy.Evaluate(rows, completedGroupMatches(4), []models.PlayoffMatch{semi})
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1 final", len(got))
	}
	final := got[0]
	if final.Phase != models.PhaseFinal {
		t.Errorf("phase = %s, want %s", final.Phase, models.PhaseFinal)
	}
	if final.P1ID != "p1" || final.P2ID != "p3" {
		t.Errorf("final pairs %s vs %s, want p1 vs semifinal winner p3", final.P1ID, final.P2ID)
	}
}

// A drawn semifinal score is not rejected anywhere upstream, so the bracket
// has to resolve it deterministically: the second slot advances.
func TestEvaluateDrawnSemifinal(t *testing.T) {
	var policy PlayoffPolicy
	rows := rankedRows("p1", "p2", "p3", "p4")

	semi := models.PlayoffMatch{ID: NewMatchID(), Phase: models.PhaseSemifinal, P1ID: "p2", P2ID: "p3"}
	semi.SetScore(2, 2, false)

	got := policy.Evaluate(rows, completedGroupMatches(4), []models.PlayoffMatch{semi})
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1 final", len(got))
	}
	if got[0].P2ID != "p3" {
		t.Errorf("drawn semifinal must advance the second slot, got %s", got[0].P2ID)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	var policy PlayoffPolicy
	rows := rankedRows("p1", "p2", "p3", "p4")
	group := completedGroupMatches(4)

	playoffs := policy.Evaluate(rows, group, nil)
	if len(playoffs) != 1 {
		t.Fatalf("setup: want a semifinal, got %v", playoffs)
	}
	if got := policy.Evaluate(rows, group, playoffs); got != nil {
		t.Errorf("existing semifinal regenerated: %v", got)
	}

	playoffs[0].SetScore(4, 2, false)
	playoffs = append(playoffs, policy.Evaluate(rows, group, playoffs)...)
	if len(playoffs) != 2 {
		t.Fatalf("setup: want semifinal plus final, got %v", playoffs)
	}
	if got := policy.Evaluate(rows, group, playoffs); got != nil {
		t.Errorf("existing final regenerated: %v", got)
	}

	playoffs[1].SetScore(1, 0, false)
	if got := policy.Evaluate(rows, group, playoffs); got != nil {
		t.Errorf("completed final must be terminal, got %v", got)
	}
}
