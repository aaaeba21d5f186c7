// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// AnalysisHandler serves analysis results: full snapshots, the ranked
// opportunity list, and the overtake plans.
type AnalysisHandler struct {
	deps Dependencies
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps Dependencies) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

// pathUser extracts the username from paths like /analysis/{user}.
func pathUser(r *http.Request, prefix string) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
}

// HandleGetAnalysis handles GET /analysis/{user}?rival={name} requests,
// returning the full snapshot.
func (h *AnalysisHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	user := pathUser(r, "/analysis/")
	if user == "" {
		writeError(w, http.StatusBadRequest, "bad_request", nil)
		return
	}

	snap, err := h.deps.Analyze(r.Context(), user, r.URL.Query().Get("rival"))
	if err != nil {
		writeAnalyzeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleGetOpportunities handles GET /opportunities/{user} requests,
// returning only the ranked opportunity list.
func (h *AnalysisHandler) HandleGetOpportunities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	user := pathUser(r, "/opportunities/")
	if user == "" {
		writeError(w, http.StatusBadRequest, "bad_request", nil)
		return
	}

	snap, err := h.deps.Analyze(r.Context(), user, "")
	if err != nil {
		writeAnalyzeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Opportunities)
}

// HandleGetPlan handles GET /plan/{user}?mode={min-time|min-tracks}&rival={name}
// requests. The default mode is min-time.
func (h *AnalysisHandler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	user := pathUser(r, "/plan/")
	if user == "" {
		writeError(w, http.StatusBadRequest, "bad_request", nil)
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "min-time"
	}
	if mode != "min-time" && mode != "min-tracks" {
		writeError(w, http.StatusBadRequest, "bad_request", nil)
		return
	}

	snap, err := h.deps.Analyze(r.Context(), user, r.URL.Query().Get("rival"))
	if err != nil {
		writeAnalyzeError(w, err)
		return
	}

	plan := snap.PlanMinTime
	if mode == "min-tracks" {
		plan = snap.PlanMinTracks
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
