package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/puckdrop/tournament-server/models"
	"github.com/puckdrop/tournament-server/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
	}
}

// GetHandler handles GET /tournament.
func (h *TournamentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	view := h.tournamentService.View(r.Context())
	if view.State == models.StateSetup && view.PlayerCount == 0 {
		mapServiceErrorToHTTP(w, r, services.ErrTournamentNotStarted)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler handles POST /tournament.
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	var input services.StartTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.tournamentService.StartTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetHandler handles DELETE /tournament.
func (h *TournamentHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.Reset(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StandingsHandler handles GET /tournament/standings.
func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	rows := h.tournamentService.Standings(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": rows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatchesHandler handles GET /tournament/matches with optional
// ?phase= and ?completed= query filters.
func (h *TournamentHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	var filter services.MatchFilter
	query := r.URL.Query()

	if phaseStr := query.Get("phase"); phaseStr != "" {
		phase := models.MatchPhase(phaseStr)
		switch phase {
		case models.PhaseGroupStage, models.PhaseSemifinal, models.PhaseFinal:
			filter.Phase = &phase
		default:
			badRequestResponse(w, r, errors.New("invalid phase query parameter"))
			return
		}
	}
	if completedStr := query.Get("completed"); completedStr != "" {
		completed, err := strconv.ParseBool(completedStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid completed query parameter"))
			return
		}
		filter.Completed = &completed
	}

	matches := h.tournamentService.Matches(r.Context(), filter)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type submitScoreInput struct {
	Team1Score *int `json:"team1_score"`
	Team2Score *int `json:"team2_score"`
	Overtime   bool `json:"overtime"`
}

// SubmitScoreHandler handles POST /tournament/matches/{matchID}/score.
func (h *TournamentHandler) SubmitScoreHandler(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		badRequestResponse(w, r, errors.New("missing matchID in URL"))
		return
	}

	var input submitScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Team1Score == nil || input.Team2Score == nil {
		badRequestResponse(w, r, errors.New("both team1_score and team2_score are required"))
		return
	}

	err := h.tournamentService.SubmitScore(r.Context(), matchID, *input.Team1Score, *input.Team2Score, input.Overtime)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	view := h.tournamentService.View(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
