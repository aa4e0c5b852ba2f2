// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/halden/reelrank/internal/domain/item"
)

// RankingHandler handles session state, voting and ranking requests.
type RankingHandler struct {
	deps Dependencies
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps Dependencies) *RankingHandler {
	return &RankingHandler{deps: deps}
}

// HandleState handles GET /state requests.
func (h *RankingHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	st, err := h.deps.State(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeState(w, st)
}

type generateRequest struct {
	Movies      []item.Item `json:"movies"`
	PersonCount int         `json:"personCount"`
}

// HandleGenerate handles POST /generate requests. It replaces the current
// session with a fresh one built from the submitted item list.
func (h *RankingHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	st, err := h.deps.Generate(r.Context(), req.Movies, req.PersonCount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeState(w, st)
}

type voteRequest struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
	Person string `json:"person"`
}

// HandleVote handles POST /vote requests.
func (h *RankingHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req voteRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	st, err := h.deps.Vote(r.Context(), req.Winner, req.Loser, req.Person)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeState(w, st)
}

type resetRequest struct {
	PersonCount int `json:"personCount"`
}

// HandleReset handles POST /reset requests. Ratings and tallies are wiped
// while the item list survives.
func (h *RankingHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req resetRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	st, err := h.deps.ResetRatings(r.Context(), req.PersonCount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeState(w, st)
}

// HandleResetAll handles POST /reset-all requests.
func (h *RankingHandler) HandleResetAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := h.deps.ResetAll(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type rankConfirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

// HandleRankConfirm handles POST /rank-confirm requests.
func (h *RankingHandler) HandleRankConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req := rankConfirmRequest{Confirmed: true}
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	st, err := h.deps.ConfirmRanking(r.Context(), req.Confirmed)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeState(w, st)
}

type rankingsResponse struct {
	OK       bool `json:"ok"`
	Rankings any  `json:"rankings"`
}

// HandleRankings handles GET /rankings requests. Items come back ordered by
// conservative score, best first.
func (h *RankingHandler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ranked, err := h.deps.Rankings(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rankingsResponse{OK: true, Rankings: ranked})
}

type coverageResponse struct {
	OK       bool `json:"ok"`
	Coverage any  `json:"coverage"`
}

// HandleCoverage handles GET /coverage requests.
func (h *RankingHandler) HandleCoverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	report, err := h.deps.Coverage(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coverageResponse{OK: true, Coverage: report})
}
