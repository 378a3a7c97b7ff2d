package schedule

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

func TestGroupStageRejectsTooFewPlayers(t *testing.T) {
	gen := NewGroupStageGenerator(rand.New(rand.NewSource(1)))
	_, err := gen.Generate(context.Background(), GenerateParams{Players: testPlayers(1)})
	if !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("got %v, want ErrNotEnoughPlayers", err)
	}
}

func TestGroupStageMatchCount(t *testing.T) {
	tests := []struct {
		players int
		want    int
	}{
		{2, 4},
		{3, 4},
		{4, 4},
		{5, 5},
		{6, 5},
		{7, 6},
		{8, 6},
		{10, 6},
	}

	gen := NewGroupStageGenerator(rand.New(rand.NewSource(1)))
	for _, tc := range tests {
		matches, err := gen.Generate(context.Background(), GenerateParams{Players: testPlayers(tc.players)})
		if err != nil {
			t.Fatalf("n=%d: %v", tc.players, err)
		}
		if len(matches) != tc.want {
			t.Errorf("n=%d: got %d matches, want %d", tc.players, len(matches), tc.want)
		}
	}
}

func TestGroupStageTeamShapes(t *testing.T) {
	for _, n := range []int{4, 5, 7, 8} {
		gen := NewGroupStageGenerator(rand.New(rand.NewSource(int64(n))))
		players := testPlayers(n)
		matches, err := gen.Generate(context.Background(), GenerateParams{Players: players})
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}

		known := make(map[string]struct{}, n)
		for _, p := range players {
			known[p.ID] = struct{}{}
		}

		teamSize := n / 2
		for _, m := range matches {
			if len(m.Team1) != teamSize || len(m.Team2) != teamSize {
				t.Fatalf("n=%d: team sizes %d/%d, want %d each", n, len(m.Team1), len(m.Team2), teamSize)
			}

			onIce := make(map[string]struct{})
			for _, id := range append(append([]string{}, m.Team1...), m.Team2...) {
				if _, ok := known[id]; !ok {
					t.Fatalf("n=%d: roster references unknown player %q", n, id)
				}
				if _, dup := onIce[id]; dup {
					t.Fatalf("n=%d: player %q appears on both sides", n, id)
				}
				onIce[id] = struct{}{}
			}
			// With an odd player count exactly one player sits out.
			if want := 2 * teamSize; len(onIce) != want {
				t.Fatalf("n=%d: %d players on the ice, want %d", n, len(onIce), want)
			}
		}
	}
}

func TestGroupStageSeededReproducibility(t *testing.T) {
	players := testPlayers(6)

	first, err := NewGroupStageGenerator(rand.New(rand.NewSource(42))).
		Generate(context.Background(), GenerateParams{Players: players})
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewGroupStageGenerator(rand.New(rand.NewSource(42))).
		Generate(context.Background(), GenerateParams{Players: players})
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("slate sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		for k := range first[i].Team1 {
			if first[i].Team1[k] != second[i].Team1[k] {
				t.Fatalf("match %d team1 differs between identical seeds", i)
			}
		}
		for k := range first[i].Team2 {
			if first[i].Team2[k] != second[i].Team2[k] {
				t.Fatalf("match %d team2 differs between identical seeds", i)
			}
		}
	}
}
