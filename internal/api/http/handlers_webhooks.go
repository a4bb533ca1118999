package apihttp

import (
	"encoding/json"
	"net/http"
	"strings"

	"bitserve/internal/domain"
	"bitserve/internal/webhook"
)

type registerWebhookRequest struct {
	Event string `json:"event"`
	URL   string `json:"url"`
}

type webhookListResponse struct {
	Webhooks []domain.WebhookSubscription `json:"webhooks"`
	Count    int                          `json:"count"`
	Stats    webhook.Stats                `json:"stats"`
}

func (s *Server) handleWebhooks(w http.ResponseWriter, r *http.Request) {
	if s.webhooks == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "webhook service not configured")
		return
	}
	switch r.Method {
	case http.MethodPost:
		s.handleRegisterWebhook(w, r)
	case http.MethodGet:
		s.handleListWebhooks(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegisterWebhook(w http.ResponseWriter, r *http.Request) {
	var body registerWebhookRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	sub := domain.WebhookSubscription{
		Event: domain.EventType(strings.TrimSpace(body.Event)),
		URL:   strings.TrimSpace(body.URL),
	}
	if err := s.webhooks.Subscribe(r.Context(), sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleListWebhooks(w http.ResponseWriter, r *http.Request) {
	subs := s.webhooks.Subscriptions()
	writeJSON(w, http.StatusOK, webhookListResponse{
		Webhooks: subs,
		Count:    len(subs),
		Stats:    s.webhooks.Stats(),
	})
}
