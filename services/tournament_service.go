package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/sync/errgroup"

	"github.com/puckdrop/tournament-server/live"
	"github.com/puckdrop/tournament-server/metrics"
	"github.com/puckdrop/tournament-server/models"
	"github.com/puckdrop/tournament-server/repositories"
	"github.com/puckdrop/tournament-server/schedule"
	"github.com/puckdrop/tournament-server/standings"
	"github.com/puckdrop/tournament-server/storage"
)

const (
	minPlayers = 2
	maxPlayers = 10
)

// StartTournamentInput is the setup form: a schedule mode and one name per
// player, in seeding order.
type StartTournamentInput struct {
	Mode        models.ScheduleMode `json:"mode"`
	PlayerNames []string            `json:"players"`
}

// MatchFilter narrows the match listing. Nil fields match everything.
type MatchFilter struct {
	Phase     *models.MatchPhase
	Completed *bool
}

type MatchList struct {
	GroupMatches   []models.GroupMatch   `json:"group_matches"`
	PlayoffMatches []models.PlayoffMatch `json:"playoff_matches"`
}

// TournamentView is the read-only dashboard summary.
type TournamentView struct {
	State           models.TournamentState `json:"state"`
	Mode            models.ScheduleMode    `json:"mode,omitempty"`
	Players         []models.Player        `json:"players"`
	PlayerCount     int                    `json:"player_count"`
	MatchesTotal    int                    `json:"matches_total"`
	MatchesComplete int                    `json:"matches_complete"`
	Champion        *models.Player         `json:"champion,omitempty"`
}

// TournamentService owns the authoritative tournament state: it applies
// score updates, drives playoff advancement, exposes derived views, and
// hands snapshots to the persistence layer after every mutation. All other
// components only ever see copies.
type TournamentService interface {
	Rehydrate(ctx context.Context) error
	StartTournament(ctx context.Context, input StartTournamentInput) (*TournamentView, error)
	SubmitScore(ctx context.Context, matchID string, team1Score, team2Score int, overtime bool) error
	View(ctx context.Context) TournamentView
	Standings(ctx context.Context) []models.StandingsRow
	Matches(ctx context.Context, filter MatchFilter) MatchList
	RecentResults(ctx context.Context, limit int) []MatchSummary
	Reset(ctx context.Context) error
}

type tournamentService struct {
	mu       sync.Mutex
	snapshot *models.TournamentSnapshot

	repo       repositories.SnapshotRepository
	generators map[models.ScheduleMode]schedule.Generator
	policy     schedule.PlayoffPolicy

	hub          *live.Hub                // optional
	commissioner Commissioner             // optional
	archiver     storage.SnapshotArchiver // optional

	logger *slog.Logger
}

func NewTournamentService(
	repo repositories.SnapshotRepository,
	generators map[models.ScheduleMode]schedule.Generator,
	hub *live.Hub,
	commissioner Commissioner,
	archiver storage.SnapshotArchiver,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		repo:         repo,
		generators:   generators,
		hub:          hub,
		commissioner: commissioner,
		archiver:     archiver,
		logger:       logger,
	}
}

// Rehydrate loads the last persisted snapshot, if any. A missing snapshot
// means "no active tournament, show setup".
func (s *tournamentService) Rehydrate(ctx context.Context) error {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrSnapshotNotFound) {
			return nil
		}
		return fmt.Errorf("failed to rehydrate tournament state: %w", err)
	}

	s.mu.Lock()
	s.snapshot = snapshot
	state := s.stateLocked()
	s.mu.Unlock()

	s.logger.Info("tournament state rehydrated",
		slog.Int("players", len(snapshot.Players)),
		slog.String("state", string(state)))
	return nil
}

func (s *tournamentService) StartTournament(ctx context.Context, input StartTournamentInput) (*TournamentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil {
		return nil, ErrTournamentActive
	}

	generator, ok := s.generators[input.Mode]
	if !ok {
		return nil, ErrUnknownScheduleMode
	}

	n := len(input.PlayerNames)
	if n < minPlayers || n > maxPlayers {
		return nil, ErrPlayerCountInvalid
	}

	players := make([]models.Player, 0, n)
	for i, name := range input.PlayerNames {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrPlayerNameRequired
		}
		players = append(players, models.Player{
			ID:   uuid.Must(uuid.NewV7()).String(),
			Name: name,
			Seed: i + 1,
		})
	}

	matches, err := generator.Generate(ctx, schedule.GenerateParams{Players: players})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s schedule: %w", generator.Name(), err)
	}

	s.snapshot = &models.TournamentSnapshot{
		Players:      players,
		PlayerCount:  n,
		Mode:         input.Mode,
		GroupMatches: matches,
	}

	if err := s.persistLocked(ctx); err != nil {
		s.snapshot = nil
		return nil, err
	}

	metrics.TournamentsStarted.Inc()
	s.logger.Info("tournament started",
		slog.String("mode", string(input.Mode)),
		slog.Int("players", n),
		slog.Int("matches", len(matches)))

	view := s.viewLocked()
	s.broadcast(live.Event{Type: live.EventTournamentStarted, Payload: view})
	return &view, nil
}

// SubmitScore records both scores on a match and re-evaluates playoff
// advancement. An unknown match id is a deliberate no-op: nothing mutates
// and no error surfaces.
func (s *tournamentService) SubmitScore(ctx context.Context, matchID string, team1Score, team2Score int, overtime bool) error {
	if team1Score < 0 || team2Score < 0 {
		return ErrScoreNegative
	}

	s.mu.Lock()

	if s.snapshot == nil {
		s.mu.Unlock()
		s.logger.Warn("score submitted with no active tournament", slog.String("match_id", matchID))
		return nil
	}

	group, playoff := s.findMatchLocked(matchID)
	if group == nil && playoff == nil {
		s.mu.Unlock()
		s.logger.Warn("score submitted for unknown match", slog.String("match_id", matchID))
		return nil
	}

	var result *models.MatchResult
	var summary MatchSummary
	if group != nil {
		result = &group.MatchResult
		summary = s.summaryLocked(models.PhaseGroupStage, group.Team1, group.Team2)
	} else {
		result = &playoff.MatchResult
		summary = s.summaryLocked(playoff.Phase, []string{playoff.P1ID}, []string{playoff.P2ID})
	}
	wasComplete := result.IsComplete
	result.SetScore(team1Score, team2Score, overtime)
	summary.HomeScore, summary.AwayScore, summary.Overtime = team1Score, team2Score, overtime
	if !wasComplete {
		// A correction to an already scored match is not a new completion.
		metrics.MatchesCompleted.Inc()
	}

	rows := standings.Calculate(s.snapshot.Players, s.snapshot.GroupMatches, s.snapshot.PlayoffMatches)

	// Round-robin mode is a single implicit phase; only the group-stage
	// format advances into playoffs.
	if s.snapshot.Mode == models.ModeGroupStage {
		// Seeding decisions come from the group-stage table alone. Feeding
		// playoff results back in would let a semifinal winner overtake the
		// group leader and claim both slots of the final.
		groupRows := standings.Calculate(s.snapshot.Players, s.snapshot.GroupMatches, nil)
		appended := s.policy.Evaluate(groupRows, s.snapshot.GroupMatches, s.snapshot.PlayoffMatches)
		if len(appended) > 0 {
			s.snapshot.PlayoffMatches = append(s.snapshot.PlayoffMatches, appended...)
			for _, m := range appended {
				metrics.PhaseTransitions.WithLabelValues(string(m.Phase)).Inc()
				s.logger.Info("playoff match generated",
					slog.String("phase", string(m.Phase)),
					slog.String("match_id", m.ID))
			}
			s.broadcast(live.Event{Type: live.EventPhaseAdvanced, Payload: appended})
			rows = standings.Calculate(s.snapshot.Players, s.snapshot.GroupMatches, s.snapshot.PlayoffMatches)
		}
	}

	// A failed save must not roll back an accepted score; the next
	// mutation will retry the write.
	if err := s.persistLocked(ctx); err != nil {
		s.logger.Error("failed to persist snapshot after score submission", slog.Any("error", err))
	}

	s.broadcast(live.Event{Type: live.EventMatchUpdated, Payload: s.matchesLocked(MatchFilter{})})
	s.broadcast(live.Event{Type: live.EventStandingsUpdated, Payload: rows})

	finished := s.stateLocked() == models.StateComplete
	s.mu.Unlock()

	// Narration and archival are fire-and-forget: they attach to already
	// completed matches and never gate scoring or advancement.
	switch {
	case finished && (s.commissioner != nil || s.archiver != nil):
		go s.finishTournament()
	case s.commissioner != nil:
		go s.attachRecap(matchID, summary)
	}
	return nil
}

func (s *tournamentService) View(_ context.Context) TournamentView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *tournamentService) Standings(_ context.Context) []models.StandingsRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return []models.StandingsRow{}
	}
	return standings.Calculate(s.snapshot.Players, s.snapshot.GroupMatches, s.snapshot.PlayoffMatches)
}

func (s *tournamentService) Matches(_ context.Context, filter MatchFilter) MatchList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchesLocked(filter)
}

// RecentResults returns summaries of the most recently listed completed
// matches, oldest first, for the commissioner's chat context.
func (s *tournamentService) RecentResults(_ context.Context, limit int) []MatchSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil
	}

	summaries := make([]MatchSummary, 0)
	for i := range s.snapshot.GroupMatches {
		m := &s.snapshot.GroupMatches[i]
		if m.IsComplete {
			summaries = append(summaries, s.completedSummaryLocked(models.PhaseGroupStage, m.Team1, m.Team2, m.MatchResult))
		}
	}
	for i := range s.snapshot.PlayoffMatches {
		m := &s.snapshot.PlayoffMatches[i]
		if m.IsComplete {
			summaries = append(summaries, s.completedSummaryLocked(m.Phase, []string{m.P1ID}, []string{m.P2ID}, m.MatchResult))
		}
	}
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[len(summaries)-limit:]
	}
	return summaries
}

func (s *tournamentService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = nil
	if err := s.repo.Delete(ctx); err != nil && !errors.Is(err, repositories.ErrSnapshotNotFound) {
		return fmt.Errorf("failed to delete persisted snapshot: %w", err)
	}

	s.logger.Info("tournament reset")
	s.broadcast(live.Event{Type: live.EventTournamentReset})
	return nil
}

// attachRecap asks the commissioner for narration and pins it to the match
// if the match still exists and is still complete by the time it returns.
func (s *tournamentService) attachRecap(matchID string, summary MatchSummary) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	text := s.commissioner.MatchRecap(ctx, summary)
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return
	}
	group, playoff := s.findMatchLocked(matchID)
	switch {
	case group != nil && group.IsComplete:
		group.Recap = text
	case playoff != nil && playoff.IsComplete:
		playoff.Recap = text
	default:
		return
	}
	if err := s.persistLocked(ctx); err != nil {
		s.logger.Error("failed to persist recap", slog.Any("error", err))
	}
	s.broadcast(live.Event{Type: live.EventMatchUpdated, Payload: s.matchesLocked(MatchFilter{})})
}

// finishTournament runs once the final score lands: it fills any missing
// recaps in parallel, then archives the closing snapshot.
func (s *tournamentService) finishTournament() {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	if s.commissioner != nil {
		type pendingRecap struct {
			matchID string
			summary MatchSummary
		}

		s.mu.Lock()
		pending := make([]pendingRecap, 0)
		if s.snapshot != nil {
			for i := range s.snapshot.GroupMatches {
				m := &s.snapshot.GroupMatches[i]
				if m.IsComplete && m.Recap == "" {
					pending = append(pending, pendingRecap{m.ID, s.completedSummaryLocked(models.PhaseGroupStage, m.Team1, m.Team2, m.MatchResult)})
				}
			}
			for i := range s.snapshot.PlayoffMatches {
				m := &s.snapshot.PlayoffMatches[i]
				if m.IsComplete && m.Recap == "" {
					pending = append(pending, pendingRecap{m.ID, s.completedSummaryLocked(m.Phase, []string{m.P1ID}, []string{m.P2ID}, m.MatchResult)})
				}
			}
		}
		s.mu.Unlock()

		recaps := make([]string, len(pending))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for i := range pending {
			i := i
			g.Go(func() error {
				recaps[i] = s.commissioner.MatchRecap(gctx, pending[i].summary)
				return nil
			})
		}
		_ = g.Wait()

		s.mu.Lock()
		if s.snapshot != nil {
			for i, p := range pending {
				if recaps[i] == "" {
					continue
				}
				group, playoff := s.findMatchLocked(p.matchID)
				if group != nil {
					group.Recap = recaps[i]
				} else if playoff != nil {
					playoff.Recap = recaps[i]
				}
			}
			if err := s.persistLocked(ctx); err != nil {
				s.logger.Error("failed to persist closing recaps", slog.Any("error", err))
			}
		}
		s.mu.Unlock()
	}

	if s.archiver == nil {
		return
	}

	s.mu.Lock()
	if s.snapshot == nil {
		s.mu.Unlock()
		return
	}
	data, err := json.Marshal(s.snapshot)
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("failed to marshal snapshot for archival", slog.Any("error", err))
		return
	}

	key := fmt.Sprintf("tournaments/%s.json", time.Now().UTC().Format("20060102T150405Z"))
	result, err := s.archiver.Archive(ctx, key, data)
	if err != nil {
		s.logger.Error("failed to archive finished tournament", slog.Any("error", err))
		return
	}
	s.logger.Info("finished tournament archived",
		slog.String("key", result.Key),
		slog.String("location", result.Location))
}

// ---- internal helpers; callers hold s.mu ----

func (s *tournamentService) findMatchLocked(matchID string) (*models.GroupMatch, *models.PlayoffMatch) {
	for i := range s.snapshot.GroupMatches {
		if s.snapshot.GroupMatches[i].ID == matchID {
			return &s.snapshot.GroupMatches[i], nil
		}
	}
	for i := range s.snapshot.PlayoffMatches {
		if s.snapshot.PlayoffMatches[i].ID == matchID {
			return nil, &s.snapshot.PlayoffMatches[i]
		}
	}
	return nil, nil
}

func (s *tournamentService) matchesLocked(filter MatchFilter) MatchList {
	list := MatchList{
		GroupMatches:   []models.GroupMatch{},
		PlayoffMatches: []models.PlayoffMatch{},
	}
	if s.snapshot == nil {
		return list
	}

	includeGroup := filter.Phase == nil || *filter.Phase == models.PhaseGroupStage
	if includeGroup {
		for i := range s.snapshot.GroupMatches {
			m := s.snapshot.GroupMatches[i]
			if filter.Completed != nil && m.IsComplete != *filter.Completed {
				continue
			}
			list.GroupMatches = append(list.GroupMatches, m)
		}
	}
	for i := range s.snapshot.PlayoffMatches {
		m := s.snapshot.PlayoffMatches[i]
		if filter.Phase != nil && m.Phase != *filter.Phase {
			continue
		}
		if filter.Completed != nil && m.IsComplete != *filter.Completed {
			continue
		}
		list.PlayoffMatches = append(list.PlayoffMatches, m)
	}
	return list
}

func (s *tournamentService) stateLocked() models.TournamentState {
	snap := s.snapshot
	if snap == nil || (len(snap.GroupMatches) == 0 && len(snap.PlayoffMatches) == 0) {
		return models.StateSetup
	}

	groupDone := true
	for i := range snap.GroupMatches {
		if !snap.GroupMatches[i].IsComplete {
			groupDone = false
			break
		}
	}

	if snap.Mode == models.ModeRoundRobin {
		if groupDone {
			return models.StateComplete
		}
		return models.StateGroupStage
	}

	var semifinal, final *models.PlayoffMatch
	for i := range snap.PlayoffMatches {
		switch snap.PlayoffMatches[i].Phase {
		case models.PhaseSemifinal:
			semifinal = &snap.PlayoffMatches[i]
		case models.PhaseFinal:
			final = &snap.PlayoffMatches[i]
		}
	}
	switch {
	case final != nil && final.IsComplete:
		return models.StateComplete
	case final != nil:
		return models.StateFinal
	case semifinal != nil:
		return models.StateSemifinal
	case groupDone && len(snap.Players) < 2:
		// Nobody to pair into playoffs. Terminal.
		return models.StateComplete
	default:
		return models.StateGroupStage
	}
}

func (s *tournamentService) viewLocked() TournamentView {
	view := TournamentView{
		State:   s.stateLocked(),
		Players: []models.Player{},
	}
	if s.snapshot == nil {
		return view
	}

	view.Mode = s.snapshot.Mode
	view.Players = append(view.Players, s.snapshot.Players...)
	view.PlayerCount = s.snapshot.PlayerCount
	view.MatchesTotal, view.MatchesComplete = s.snapshot.MatchCounts()

	if view.State == models.StateComplete && s.snapshot.Mode == models.ModeGroupStage {
		for i := range s.snapshot.PlayoffMatches {
			m := &s.snapshot.PlayoffMatches[i]
			if m.Phase == models.PhaseFinal && m.IsComplete {
				view.Champion = s.snapshot.PlayerByID(m.WinnerID())
				break
			}
		}
	}
	return view
}

func (s *tournamentService) summaryLocked(phase models.MatchPhase, side1, side2 []string) MatchSummary {
	return MatchSummary{
		Phase:    phase,
		HomeName: s.sideNameLocked(side1),
		AwayName: s.sideNameLocked(side2),
	}
}

func (s *tournamentService) completedSummaryLocked(phase models.MatchPhase, side1, side2 []string, res models.MatchResult) MatchSummary {
	summary := s.summaryLocked(phase, side1, side2)
	if res.Team1Score != nil && res.Team2Score != nil {
		summary.HomeScore = *res.Team1Score
		summary.AwayScore = *res.Team2Score
	}
	summary.Overtime = res.IsOvertime
	return summary
}

func (s *tournamentService) sideNameLocked(ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p := s.snapshot.PlayerByID(id); p != nil {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

// persistLocked writes the snapshot through the repository. Nothing is
// ever written before at least one match exists, so a half-filled setup
// form never becomes durable state.
func (s *tournamentService) persistLocked(ctx context.Context) error {
	if s.snapshot == nil {
		return nil
	}
	if len(s.snapshot.GroupMatches) == 0 && len(s.snapshot.PlayoffMatches) == 0 {
		return nil
	}
	s.snapshot.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, s.snapshot); err != nil {
		return fmt.Errorf("failed to persist tournament snapshot: %w", err)
	}
	metrics.SnapshotWrites.Inc()
	return nil
}

func (s *tournamentService) broadcast(event live.Event) {
	if s.hub != nil {
		s.hub.Broadcast(event)
	}
}
