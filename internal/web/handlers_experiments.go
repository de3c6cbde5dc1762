package web

import (
	"context"
	"net/http"

	"github.com/emiliopalmerini/authorsite/internal/experiments"
)

func (s *Server) handleCreateExperiment(w http.ResponseWriter, r *http.Request) {
	var in experiments.CreateExperimentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	exp, err := s.svc.Admin.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExperimentResponse(exp))
}

func (s *Server) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	exps, err := s.svc.Admin.List(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	out := make([]experimentResponse, 0, len(exps))
	for _, e := range exps {
		out = append(out, toExperimentResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	exp, err := s.svc.Admin.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toExperimentResponse(exp))
}

func (s *Server) handleActivateExperiment(w http.ResponseWriter, r *http.Request) {
	s.changeExperiment(w, r, s.svc.Admin.Activate)
}

func (s *Server) handleDeactivateExperiment(w http.ResponseWriter, r *http.Request) {
	s.changeExperiment(w, r, s.svc.Admin.Deactivate)
}

func (s *Server) handleDeleteExperiment(w http.ResponseWriter, r *http.Request) {
	s.changeExperiment(w, r, s.svc.Admin.Delete)
}

func (s *Server) changeExperiment(w http.ResponseWriter, r *http.Request, change func(context.Context, string) error) {
	if err := change(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
