package schedule

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/puckdrop/tournament-server/models"
)

func testPlayers(n int) []models.Player {
	players := make([]models.Player, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, models.Player{
			ID:   fmt.Sprintf("p%d", i+1),
			Name: fmt.Sprintf("Player %d", i+1),
			Seed: i + 1,
		})
	}
	return players
}

func TestRoundRobinRejectsTooFewPlayers(t *testing.T) {
	gen := NewRoundRobinGenerator(rand.New(rand.NewSource(1)))
	for _, n := range []int{0, 1} {
		_, err := gen.Generate(context.Background(), GenerateParams{Players: testPlayers(n)})
		if !errors.Is(err, ErrNotEnoughPlayers) {
			t.Errorf("n=%d: got %v, want ErrNotEnoughPlayers", n, err)
		}
	}
}

func TestRoundRobinMatchCount(t *testing.T) {
	gen := NewRoundRobinGenerator(rand.New(rand.NewSource(1)))
	for n := 2; n <= 10; n++ {
		matches, err := gen.Generate(context.Background(), GenerateParams{Players: testPlayers(n)})
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if want := n * (n - 1) / 2; len(matches) != want {
			t.Errorf("n=%d: got %d matches, want %d", n, len(matches), want)
		}
	}
}

func TestRoundRobinCoversEveryPairExactlyOnce(t *testing.T) {
	gen := NewRoundRobinGenerator(rand.New(rand.NewSource(7)))
	matches, err := gen.Generate(context.Background(), GenerateParams{Players: testPlayers(5)})
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]int)
	for _, m := range matches {
		if len(m.Team1) != 1 || len(m.Team2) != 1 {
			t.Fatalf("round robin sides must be singletons, got %v vs %v", m.Team1, m.Team2)
		}
		a, b := m.Team1[0], m.Team2[0]
		if a == b {
			t.Fatalf("player %q paired with itself", a)
		}
		if b < a {
			a, b = b, a
		}
		seen[a+"/"+b]++
	}
	for pair, count := range seen {
		if count != 1 {
			t.Errorf("pair %s appears %d times", pair, count)
		}
	}
	if len(seen) != 10 {
		t.Errorf("got %d distinct pairs, want 10", len(seen))
	}
}

func TestRoundRobinStartsUnscored(t *testing.T) {
	gen := NewRoundRobinGenerator(rand.New(rand.NewSource(3)))
	matches, err := gen.Generate(context.Background(), GenerateParams{Players: testPlayers(4)})
	if err != nil {
		t.Fatal(err)
	}
	ids := make(map[string]struct{})
	for _, m := range matches {
		if m.IsComplete || m.Team1Score != nil || m.Team2Score != nil {
			t.Errorf("match %s should start without a result", m.ID)
		}
		if m.ID == "" {
			t.Error("match generated without an id")
		}
		ids[m.ID] = struct{}{}
	}
	if len(ids) != len(matches) {
		t.Errorf("match ids must be unique: %d ids for %d matches", len(ids), len(matches))
	}
}
