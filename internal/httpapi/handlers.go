package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/athompson0066/Roofing-Estimator/internal/store"
	"github.com/athompson0066/Roofing-Estimator/pkg/agent"
	"github.com/athompson0066/Roofing-Estimator/pkg/estimate"
	"github.com/athompson0066/Roofing-Estimator/pkg/gemini"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeAgentError maps the agent error taxonomy onto HTTP statuses.
func writeAgentError(w http.ResponseWriter, err error) {
	var schemaErr *agent.SchemaViolationError
	var upstreamErr *agent.UpstreamError
	switch {
	case errors.As(err, &schemaErr):
		writeError(w, http.StatusBadGateway, "model returned an incomplete response")
	case errors.Is(err, agent.ErrMalformedResponse):
		writeError(w, http.StatusBadGateway, "model returned an unparseable response")
	case errors.As(err, &upstreamErr) && upstreamErr.Quota:
		writeError(w, http.StatusTooManyRequests, "upstream quota exhausted, try again later")
	case errors.As(err, &upstreamErr):
		writeError(w, http.StatusBadGateway, "upstream model call failed")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scanRequest struct {
	URL         string `json:"url"`
	Instruction string `json:"instruction"`
}

type scanResponse struct {
	ProfileID string `json:"profileId"`
	Profile   any    `json:"profile"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	p, err := s.scanner.Scan(r.Context(), req.URL, req.Instruction)
	if err != nil {
		s.logger.Error("scan failed", "url", req.URL, "error", err)
		writeAgentError(w, err)
		return
	}

	rec := &store.ProfileRecord{SourceURL: req.URL, Profile: p}
	if err := s.store.SaveProfile(r.Context(), rec); err != nil {
		s.logger.Error("save profile", "error", err)
		writeError(w, http.StatusInternalServerError, "persist profile")
		return
	}

	writeJSON(w, http.StatusOK, scanResponse{ProfileID: rec.ID, Profile: p})
}

type estimateRequest struct {
	ProfileID   string `json:"profileId"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
	Zip         string `json:"zip"`
	Language    string `json:"language"`
	Image       *struct {
		MIMEType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"image"`
}

type estimateResponse struct {
	LeadID   string           `json:"leadId"`
	Estimate *estimate.Result `json:"estimate"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	urgency := estimate.Urgency(req.Urgency)
	if req.Urgency == "" {
		urgency = estimate.UrgencyFlexible
	} else if !urgency.Valid() {
		writeError(w, http.StatusBadRequest, "unknown urgency "+req.Urgency)
		return
	}

	rec, err := s.store.GetProfile(r.Context(), req.ProfileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown profile")
			return
		}
		writeError(w, http.StatusInternalServerError, "load profile")
		return
	}

	task := estimate.Task{
		Description: req.Description,
		Urgency:     urgency,
		Zip:         req.Zip,
		Language:    req.Language,
	}
	if req.Image != nil && req.Image.Data != "" {
		task.Image = &gemini.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data}
	}

	result, err := s.estimator.Estimate(r.Context(), task, rec.Profile)
	if err != nil {
		s.logger.Error("estimate failed", "profile_id", req.ProfileID, "error", err)
		writeAgentError(w, err)
		return
	}

	lead := &store.LeadRecord{
		ProfileID:   rec.ID,
		Description: req.Description,
		Urgency:     string(urgency),
		Zip:         req.Zip,
		Estimate:    result,
	}
	if err := s.store.SaveLead(r.Context(), lead); err != nil {
		s.logger.Error("save lead", "error", err)
		writeError(w, http.StatusInternalServerError, "persist lead")
		return
	}

	writeJSON(w, http.StatusOK, estimateResponse{LeadID: lead.ID, Estimate: result})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown profile")
			return
		}
		writeError(w, http.StatusInternalServerError, "load profile")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.store.ListLeads(r.Context(), r.URL.Query().Get("profileId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list leads")
		return
	}
	if leads == nil {
		leads = []*store.LeadRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}
