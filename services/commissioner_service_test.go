package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/puckdrop/tournament-server/models"
)

func geminiStub(t *testing.T, reply string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") == "" {
			t.Error("request is missing the API key header")
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": reply}},
				}},
			},
		})
	}))
}

func testSummary() MatchSummary {
	return MatchSummary{
		Phase:     models.PhaseFinal,
		HomeName:  "Ann",
		AwayName:  "Bob",
		HomeScore: 3,
		AwayScore: 2,
		Overtime:  true,
	}
}

func TestMatchRecapReturnsGeneratedText(t *testing.T) {
	server := geminiStub(t, "What a barn burner!", http.StatusOK)
	defer server.Close()

	c := NewSlapshotCommissioner(CommissionerConfig{
		APIKey:  "key",
		Model:   "gemini-test",
		BaseURL: server.URL,
	}, testLogger())

	got := c.MatchRecap(context.Background(), testSummary())
	if got != "What a barn burner!" {
		t.Fatalf("recap = %q", got)
	}
}

func TestMatchRecapFallsBackOnServerError(t *testing.T) {
	server := geminiStub(t, "", http.StatusInternalServerError)
	defer server.Close()

	c := NewSlapshotCommissioner(CommissionerConfig{
		APIKey:  "key",
		Model:   "gemini-test",
		BaseURL: server.URL,
	}, testLogger())

	if got := c.MatchRecap(context.Background(), testSummary()); got != recapFallback {
		t.Fatalf("recap = %q, want fallback", got)
	}
}

func TestMatchRecapFallsBackWhenUnreachable(t *testing.T) {
	c := NewSlapshotCommissioner(CommissionerConfig{
		APIKey:  "key",
		Model:   "gemini-test",
		BaseURL: "http://127.0.0.1:0",
	}, testLogger())

	if got := c.MatchRecap(context.Background(), testSummary()); got != recapFallback {
		t.Fatalf("recap = %q, want fallback", got)
	}
}

func TestChatFallsBackOnEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer server.Close()

	c := NewSlapshotCommissioner(CommissionerConfig{
		APIKey:  "key",
		Model:   "gemini-test",
		BaseURL: server.URL,
	}, testLogger())

	rows := []models.StandingsRow{{PlayerID: "p1", Name: "Ann", Wins: 2, Points: 4}}
	if got := c.Chat(context.Background(), "who wins it all?", rows, nil); got != chatFallback {
		t.Fatalf("chat = %q, want fallback", got)
	}
}

func TestWinnerName(t *testing.T) {
	s := testSummary()
	if got := s.winnerName(); got != "Ann" {
		t.Errorf("winner = %q, want Ann", got)
	}
	s.HomeScore, s.AwayScore = 1, 4
	if got := s.winnerName(); got != "Bob" {
		t.Errorf("winner = %q, want Bob", got)
	}
}
