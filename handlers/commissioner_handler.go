package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/puckdrop/tournament-server/services"
)

const recentResultsForChat = 5

type CommissionerHandler struct {
	commissioner      services.Commissioner // nil when no API key is configured
	tournamentService services.TournamentService
}

func NewCommissionerHandler(c services.Commissioner, ts services.TournamentService) *CommissionerHandler {
	return &CommissionerHandler{
		commissioner:      c,
		tournamentService: ts,
	}
}

// ChatHandler handles POST /commissioner/chat: a single-turn question to
// the commissioner, grounded in the current standings and recent results.
func (h *CommissionerHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Message string `json:"message"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.Message = strings.TrimSpace(input.Message)
	if input.Message == "" {
		badRequestResponse(w, r, errors.New("message must not be empty"))
		return
	}

	if h.commissioner == nil {
		if err := writeJSON(w, http.StatusOK, jsonResponse{"reply": "The commissioner's office is closed this season."}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	rows := h.tournamentService.Standings(r.Context())
	recent := h.tournamentService.RecentResults(r.Context(), recentResultsForChat)
	reply := h.commissioner.Chat(r.Context(), input.Message, rows, recent)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"reply": reply}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
