package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"donationhub/internal/assistant"
	apperrors "donationhub/internal/errors"
	"donationhub/internal/explorer"
	"donationhub/internal/logger"
	"donationhub/internal/models"
)

const maxAssistantBody = 64 << 10

// writeJSON is a helper to write JSON responses
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response", "error", err)
	}
}

// writeError is a helper to write error responses
func writeError(w http.ResponseWriter, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = "Resource not found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		status = http.StatusBadRequest
		message = apperrors.Message(err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "Unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
		message = "Forbidden"
	case errors.Is(err, apperrors.ErrRateLimit):
		status = http.StatusTooManyRequests
		message = "Too many requests"
	case errors.Is(err, apperrors.ErrExternalAPI):
		status = http.StatusBadGateway
		message = apperrors.Message(err)
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
		logger.Error("Internal error", "error", err)
	}

	writeJSON(w, status, map[string]string{"error": message})
}

type campaignsResponse struct {
	Campaigns  []models.Campaign      `json:"campaigns"`
	Pagination models.Pagination      `json:"pagination"`
	Filters    models.CampaignFilters `json:"filters"`
	Query      explorer.Filters       `json:"query"`
}

// CampaignsJSON returns one normalized page of campaigns for the explore
// filters in the query string.
func (h *Handler) CampaignsJSON(w http.ResponseWriter, r *http.Request) {
	f := explorer.ParseFilters(r.URL.Query(), h.Cfg.ExplorePageSize)

	page, err := h.API.Public.Campaigns(r.Context(), f.Query())
	if err != nil {
		logger.WarnContext(r.Context(), "campaign list failed", "error", err)
		writeError(w, err)
		return
	}
	if page.Campaigns == nil {
		page.Campaigns = []models.Campaign{}
	}
	writeJSON(w, http.StatusOK, campaignsResponse{
		Campaigns:  page.Campaigns,
		Pagination: page.Pagination,
		Filters:    page.Filters,
		Query:      f,
	})
}

type assistantRequest struct {
	History []assistant.Message `json:"history"`
	Message string              `json:"message"`
}

type assistantResponse struct {
	Reply string `json:"reply"`
}

// AssistantGreeting returns the chat's opening line.
func (h *Handler) AssistantGreeting(w http.ResponseWriter, r *http.Request) {
	reply := assistant.Greeting
	if !h.Assistant.Enabled() {
		reply = assistant.Unavailable
	}
	writeJSON(w, http.StatusOK, assistantResponse{Reply: reply})
}

// AssistantReply answers a chat message. Model failures still answer 200
// with an apology so the chat keeps going.
func (h *Handler) AssistantReply(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAssistantBody)).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError{Field: "body", Message: "Invalid request body"})
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, apperrors.ValidationError{Field: "message", Message: "Message is required"})
		return
	}

	writeJSON(w, http.StatusOK, assistantResponse{Reply: h.Assistant.Reply(r.Context(), req.History, req.Message)})
}
