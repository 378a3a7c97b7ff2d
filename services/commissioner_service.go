package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/puckdrop/tournament-server/metrics"
	"github.com/puckdrop/tournament-server/models"
)

const slapshotSystemInstruction = `You are 'Slapshot', a gritty, intense, and slightly sarcastic hockey tournament commissioner from the 1980s.
You love physical play, big goals, and tape-to-tape passes.
You critique players, predict outcomes based on stats, and provide "color commentary" on match results.
Keep responses concise (under 3 sentences) unless asked for a full analysis.
Never break character.`

// Fallback lines for when the commissioner is unreachable. Callers never
// see an error: recaps and chat are advisory.
const (
	recapFallback = "The transmission from the rink is fuzzy. Game recorded."
	chatFallback  = "My whistle is broken. Ask me later."
)

// MatchSummary is the name-resolved view of one completed match that the
// commissioner narrates from.
type MatchSummary struct {
	Phase     models.MatchPhase
	HomeName  string
	AwayName  string
	HomeScore int
	AwayScore int
	Overtime  bool
}

func (m MatchSummary) winnerName() string {
	if m.HomeScore > m.AwayScore {
		return m.HomeName
	}
	return m.AwayName
}

// Commissioner narrates match results and answers single-turn chat
// grounded in the current tournament state. Implementations degrade to
// placeholder text on any failure; they never propagate an error.
type Commissioner interface {
	MatchRecap(ctx context.Context, match MatchSummary) string
	Chat(ctx context.Context, message string, rows []models.StandingsRow, recent []MatchSummary) string
}

type CommissionerConfig struct {
	APIKey  string
	Model   string
	BaseURL string // defaults to the Google Generative Language endpoint
}

type slapshotCommissioner struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewSlapshotCommissioner builds the Gemini-backed commissioner persona.
func NewSlapshotCommissioner(cfg CommissionerConfig, logger *slog.Logger) Commissioner {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &slapshotCommissioner{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 20 * time.Second},
		logger:  logger,
	}
}

func (c *slapshotCommissioner) MatchRecap(ctx context.Context, match MatchSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a 2-sentence match recap for a hockey game.\n")
	fmt.Fprintf(&sb, "Home: %s (Score: %d)\n", match.HomeName, match.HomeScore)
	fmt.Fprintf(&sb, "Away: %s (Score: %d)\n", match.AwayName, match.AwayScore)
	fmt.Fprintf(&sb, "Winner: %s\n", match.winnerName())
	if match.Overtime {
		sb.WriteString("The game needed overtime.\n")
	}
	sb.WriteString("Make it sound like a post-game interview or broadcast highlight.")

	text, err := c.generate(ctx, sb.String(), 0.8)
	if err != nil {
		metrics.RecapFailures.Inc()
		c.logger.Warn("commissioner recap failed", slog.Any("error", err))
		return recapFallback
	}
	return text
}

func (c *slapshotCommissioner) Chat(ctx context.Context, message string, rows []models.StandingsRow, recent []MatchSummary) string {
	var sb strings.Builder
	sb.WriteString("Current Standings:\n")
	for i, row := range rows {
		fmt.Fprintf(&sb, "%d. %s (%d-%d, %dpts)\n", i+1, row.Name, row.Wins, row.Losses, row.Points)
	}
	sb.WriteString("\nRecent Activity:\n")
	if len(recent) == 0 {
		sb.WriteString("No games played yet.\n")
	}
	for _, m := range recent {
		fmt.Fprintf(&sb, "Match: %s %d - %d %s\n", m.HomeName, m.HomeScore, m.AwayScore, m.AwayName)
	}
	fmt.Fprintf(&sb, "\nUser says: %q", message)

	text, err := c.generate(ctx, sb.String(), 0)
	if err != nil {
		metrics.RecapFailures.Inc()
		c.logger.Warn("commissioner chat failed", slog.Any("error", err))
		return chatFallback
	}
	return text
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *slapshotCommissioner) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	reqBody := geminiRequest{
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: slapshotSystemInstruction}}},
	}
	if temperature > 0 {
		reqBody.GenerationConfig = &geminiGenerationConfig{Temperature: temperature}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generation request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generation response contained no candidates")
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("generation response contained empty text")
	}
	return text, nil
}
