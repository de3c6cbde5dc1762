package web

import (
	"io"
	"net/http"
	"strconv"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/experiments"
	"github.com/emiliopalmerini/authorsite/internal/leads"
)

func (s *Server) handleGetExperiments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.svc.Experiments.GetExperiments(r.Context(), &experiments.GetExperimentsRequest{
		Page:   q.Get("page"),
		UserID: q.Get("userId"),
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCaptureLead(w http.ResponseWriter, r *http.Request) {
	var in leads.CaptureLeadInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	lead, created, err := s.svc.Leads.Capture(r.Context(), in)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toLeadResponse(lead))
}

func (s *Server) handleValidateDomain(w http.ResponseWriter, r *http.Request) {
	name, err := domain.ValidateDomainName(r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"domain": name,
		"valid":  true,
	})
}

func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload too large"})
		return
	}

	if _, err := s.svc.Billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	get := s.svc.Stats.Get
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		get = s.svc.Stats.Refresh
	}

	st, err := get(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Experiments:       st.Experiments,
		ActiveExperiments: st.ActiveExperiments,
		Leads:             st.Leads,
		BillingEvents:     st.BillingEvents,
		GeneratedAt:       st.GeneratedAt,
	})
}
