package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes {"error": msg}. Messages of unexpected errors stay in the log.
func writeError(w http.ResponseWriter, r *http.Request, logger ports.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

type variantResponse struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	TrafficPercentage float64              `json:"trafficPercentage"`
	Config            domain.VariantConfig `json:"config"`
	BucketMin         float64              `json:"bucketMin"`
	BucketMax         float64              `json:"bucketMax"`
}

type experimentResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Page      string            `json:"page"`
	IsActive  bool              `json:"isActive"`
	Variants  []variantResponse `json:"variants"`
	CreatedAt time.Time         `json:"createdAt"`
}

func toExperimentResponse(e *domain.Experiment) experimentResponse {
	ranges := domain.BucketRanges(e.Variants)
	variants := make([]variantResponse, len(e.Variants))
	for i, v := range e.Variants {
		cfg := v.Config
		if cfg == nil {
			cfg = domain.VariantConfig{}
		}
		variants[i] = variantResponse{
			ID:                v.ID,
			Name:              v.Name,
			TrafficPercentage: v.TrafficPercentage,
			Config:            cfg,
			BucketMin:         ranges[i].Min,
			BucketMax:         ranges[i].Max,
		}
	}
	return experimentResponse{
		ID:        e.ID,
		Name:      e.Name,
		Page:      e.Page,
		IsActive:  e.IsActive,
		Variants:  variants,
		CreatedAt: e.CreatedAt,
	}
}

type leadResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Source    string    `json:"source"`
	Page      string    `json:"page,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toLeadResponse(l *domain.Lead) leadResponse {
	return leadResponse{
		ID:        l.ID,
		Email:     l.Email,
		Name:      l.Name,
		Source:    l.Source,
		Page:      l.Page,
		CreatedAt: l.CreatedAt,
	}
}

type statsResponse struct {
	Experiments       int64     `json:"experiments"`
	ActiveExperiments int64     `json:"activeExperiments"`
	Leads             int64     `json:"leads"`
	BillingEvents     int64     `json:"billingEvents"`
	GeneratedAt       time.Time `json:"generatedAt"`
}
