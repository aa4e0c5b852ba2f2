// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/halden/reelrank/internal/adapters/repository"
	service "github.com/halden/reelrank/internal/app"
	"github.com/halden/reelrank/internal/domain/item"
	"github.com/halden/reelrank/internal/domain/pairs"
	"github.com/halden/reelrank/internal/domain/session"
	"github.com/halden/reelrank/internal/domain/swipe"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	State(ctx context.Context) (*session.Session, error)
	Generate(ctx context.Context, items []item.Item, personCount int) (*session.Session, error)
	Vote(ctx context.Context, winner, loser, person string) (*session.Session, error)
	ResetRatings(ctx context.Context, personCount int) (*session.Session, error)
	ResetAll(ctx context.Context) error
	ConfirmRanking(ctx context.Context, confirmed bool) (*session.Session, error)
	Rankings(ctx context.Context) ([]service.RankedItem, error)
	Coverage(ctx context.Context) (pairs.Report, error)

	SwipeState(ctx context.Context) (*swipe.State, error)
	SetSwipeState(ctx context.Context, st *swipe.State) (*swipe.State, error)
	SwipeAction(ctx context.Context, person, decision string) (*swipe.State, error)
	SwipeConfirm(ctx context.Context, movies []item.Item, persons []string, progress map[string]*swipe.Progress) (*swipe.State, error)
	SwipeReset(ctx context.Context) (*swipe.State, error)

	CreateSnapshot(ctx context.Context, name string) (repository.SnapshotInfo, error)
	LoadSnapshot(ctx context.Context, name string) (*session.Session, error)
	ListSnapshots(ctx context.Context) ([]repository.SnapshotInfo, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	rankingHandler  *RankingHandler
	swipeHandler    *SwipeHandler
	snapshotHandler *SnapshotHandler
	posterDir       string
}

// NewServer creates a new API server with all handlers. posterDir, when
// non-empty, is served read-only under /images/.
func NewServer(deps Dependencies, posterDir string) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		rankingHandler:  NewRankingHandler(deps),
		swipeHandler:    NewSwipeHandler(deps),
		snapshotHandler: NewSnapshotHandler(deps),
		posterDir:       posterDir,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)

	mux.HandleFunc("/state", MetricsMiddleware(s.rankingHandler.HandleState, "state"))
	mux.HandleFunc("/generate", MetricsMiddleware(s.rankingHandler.HandleGenerate, "generate"))
	mux.HandleFunc("/vote", MetricsMiddleware(s.rankingHandler.HandleVote, "vote"))
	mux.HandleFunc("/reset", MetricsMiddleware(s.rankingHandler.HandleReset, "reset"))
	mux.HandleFunc("/reset-all", MetricsMiddleware(s.rankingHandler.HandleResetAll, "reset_all"))
	mux.HandleFunc("/rank-confirm", MetricsMiddleware(s.rankingHandler.HandleRankConfirm, "rank_confirm"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingHandler.HandleRankings, "rankings"))
	mux.HandleFunc("/coverage", MetricsMiddleware(s.rankingHandler.HandleCoverage, "coverage"))

	mux.HandleFunc("/swipe-state", MetricsMiddleware(s.swipeHandler.HandleSwipeState, "swipe_state"))
	mux.HandleFunc("/swipe-action", MetricsMiddleware(s.swipeHandler.HandleSwipeAction, "swipe_action"))
	mux.HandleFunc("/swipe-confirm", MetricsMiddleware(s.swipeHandler.HandleSwipeConfirm, "swipe_confirm"))
	mux.HandleFunc("/swipe-reset", MetricsMiddleware(s.swipeHandler.HandleSwipeReset, "swipe_reset"))

	mux.HandleFunc("/snapshots", MetricsMiddleware(s.snapshotHandler.HandleSnapshots, "snapshots"))
	mux.HandleFunc("/snapshots/load", MetricsMiddleware(s.snapshotHandler.HandleSnapshotLoad, "snapshots_load"))

	if s.posterDir != "" {
		mux.Handle("/images/", http.StripPrefix("/images/", http.FileServer(http.Dir(s.posterDir))))
	}
}

// okResponse is the envelope every endpoint answers with, matching what the
// original clients of the state API expect.
type okResponse struct {
	OK    bool `json:"ok"`
	State any  `json:"state,omitempty"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeState(w http.ResponseWriter, state any) {
	writeJSON(w, http.StatusOK, okResponse{OK: true, State: state})
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{OK: false, Error: err.Error()})
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNoSession),
		errors.Is(err, repository.ErrNoSwipeState),
		errors.Is(err, repository.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrSnapshotExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnknownTitle),
		errors.Is(err, swipe.ErrInvalidDecision),
		errors.Is(err, swipe.ErrEmptyPerson),
		errors.Is(err, pairs.ErrSamePair),
		errors.Is(err, pairs.ErrEmptyTitle),
		errors.Is(err, pairs.ErrEmptyRater),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON request body into v. An empty body is tolerated
// and leaves v untouched: every endpoint here treats it as "all defaults".
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrBadRequest, err)
}
