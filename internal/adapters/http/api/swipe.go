// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/halden/reelrank/internal/domain/item"
	"github.com/halden/reelrank/internal/domain/swipe"
)

// SwipeHandler handles the multi-person swipe endpoints.
type SwipeHandler struct {
	deps Dependencies
}

// NewSwipeHandler creates a new swipe handler.
func NewSwipeHandler(deps Dependencies) *SwipeHandler {
	return &SwipeHandler{deps: deps}
}

// HandleSwipeState handles GET and POST /swipe-state requests. GET returns
// the stored state, POST replaces it wholesale.
func (h *SwipeHandler) HandleSwipeState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		st, err := h.deps.SwipeState(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeState(w, st)
	case http.MethodPost:
		st := swipe.Empty()
		if err := decodeBody(r, st); err != nil {
			writeErr(w, err)
			return
		}

		saved, err := h.deps.SetSwipeState(r.Context(), st)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeState(w, saved)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type swipeActionRequest struct {
	Person   string `json:"person"`
	Decision string `json:"decision"`
}

// HandleSwipeAction handles POST /swipe-action requests.
func (h *SwipeHandler) HandleSwipeAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req swipeActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	st, err := h.deps.SwipeAction(r.Context(), req.Person, req.Decision)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeState(w, st)
}

type swipeConfirmRequest struct {
	Movies   []item.Item                `json:"movies"`
	Persons  []string                   `json:"persons"`
	Progress map[string]*swipe.Progress `json:"progress"`
}

// HandleSwipeConfirm handles POST /swipe-confirm requests. The submitted
// roster and item list replace whatever was stored, and the state locks.
func (h *SwipeHandler) HandleSwipeConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req swipeConfirmRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	st, err := h.deps.SwipeConfirm(r.Context(), req.Movies, req.Persons, req.Progress)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeState(w, st)
}

// HandleSwipeReset handles POST /swipe-reset requests.
func (h *SwipeHandler) HandleSwipeReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	st, err := h.deps.SwipeReset(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeState(w, st)
}
