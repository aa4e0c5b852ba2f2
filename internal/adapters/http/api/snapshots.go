// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// SnapshotHandler handles snapshot listing, creation and restore requests.
type SnapshotHandler struct {
	deps Dependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps Dependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

type snapshotRequest struct {
	Name string `json:"name"`
}

type snapshotListResponse struct {
	OK        bool `json:"ok"`
	Snapshots any  `json:"snapshots"`
}

type snapshotCreatedResponse struct {
	OK       bool `json:"ok"`
	Snapshot any  `json:"snapshot"`
}

// HandleSnapshots handles GET (list) and POST (create) /snapshots requests.
func (h *SnapshotHandler) HandleSnapshots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		infos, err := h.deps.ListSnapshots(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snapshotListResponse{OK: true, Snapshots: infos})
	case http.MethodPost:
		var req snapshotRequest
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}

		info, err := h.deps.CreateSnapshot(r.Context(), req.Name)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, snapshotCreatedResponse{OK: true, Snapshot: info})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// HandleSnapshotLoad handles POST /snapshots/load requests. The restored
// session is returned so clients refresh in one round trip.
func (h *SnapshotHandler) HandleSnapshotLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req snapshotRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	st, err := h.deps.LoadSnapshot(r.Context(), req.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeState(w, st)
}
