package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flowplan/flowplan/pkg/errors"
	"github.com/flowplan/flowplan/pkg/flow"
	"github.com/flowplan/flowplan/pkg/pipeline"
	"github.com/flowplan/flowplan/pkg/store"
)

// planResponse is the wire shape of a stored plan.
type planResponse struct {
	ID        string           `json:"id"`
	GraphHash string           `json:"graph_hash"`
	Graph     flow.Graph       `json:"graph"`
	Stats     planStats        `json:"stats"`
	Request   pipeline.Options `json:"request"`
}

type planStats struct {
	NodeCount  int     `json:"node_count"`
	EdgeCount  int     `json:"edge_count"`
	TotalPower float64 `json:"total_power"`
}

func toPlanResponse(p *store.Plan) planResponse {
	return planResponse{
		ID:        p.ID,
		GraphHash: p.GraphHash,
		Graph:     p.Graph,
		Stats: planStats{
			NodeCount:  len(p.Graph.Nodes),
			EdgeCount:  len(p.Graph.Edges),
			TotalPower: p.Graph.TotalPower,
		},
		Request: p.Request,
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlanCreate(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	// Artifacts are rendered on demand; serve mode persists only the graph.
	opts.Formats = []string{pipeline.FormatJSON}

	result, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	plan := store.NewPlan(opts, result)
	if err := s.cfg.Store.Put(r.Context(), plan); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("plan created",
		"request_id", RequestID(r.Context()),
		"plan_id", plan.ID,
		"item", opts.TargetItem,
		"nodes", len(plan.Graph.Nodes))

	s.writeJSON(w, http.StatusCreated, toPlanResponse(plan))
}

func (s *Server) handlePlanGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	plan, err := s.cfg.Store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

func (s *Server) handlePlanList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}

	plans, err := s.cfg.Store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]planResponse, len(plans))
	for i, p := range plans {
		out[i] = toPlanResponse(p)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"plans": out})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError maps error codes to HTTP statuses and emits a JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidItem,
		errors.ErrCodeInvalidCatalog, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidSource:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeItemNotFound,
		errors.ErrCodeRecipeNotFound, errors.ErrCodePlanNotFound:
		status = http.StatusNotFound
	}

	if status >= 500 {
		s.logger.Error("request failed",
			"request_id", RequestID(r.Context()),
			"error", err)
	}

	s.writeJSON(w, status, map[string]any{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}
