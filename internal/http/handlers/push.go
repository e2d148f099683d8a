package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/airborne/server/internal/middleware"
	"github.com/airborne/server/internal/model"
	"github.com/airborne/server/internal/push"
)

// PushHandler handles push token registry endpoints
type PushHandler struct {
	push        *push.Service
	sendLimiter *middleware.RateLimiter
}

// NewPushHandler creates a new push handler. Test sends are limited to 5 per
// 10 minutes per caller.
func NewPushHandler(pushService *push.Service) *PushHandler {
	return &PushHandler{
		push:        pushService,
		sendLimiter: middleware.NewRateLimiter(10*time.Minute, 5),
	}
}

// registerTokenRequest is the request body for POST /push/tokens
type registerTokenRequest struct {
	Token    string  `json:"token"`
	Platform *string `json:"platform"`
}

// unregisterTokenRequest is the request body for DELETE /push/tokens
type unregisterTokenRequest struct {
	Token string `json:"token"`
}

// sendTestRequest is the request body for POST /push/test
type sendTestRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// pushTokenResponse is the token object in API responses
type pushTokenResponse struct {
	ID        string  `json:"id"`
	Token     string  `json:"token"`
	Platform  *string `json:"platform,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

func toPushTokenResponse(record model.PushToken) pushTokenResponse {
	resp := pushTokenResponse{
		ID:        record.ID.String(),
		Token:     record.Token,
		UpdatedAt: record.UpdatedAt.Format(time.RFC3339),
	}
	if record.Platform != nil {
		p := string(*record.Platform)
		resp.Platform = &p
	}
	return resp
}

// HandleRegister handles POST /push/tokens
func (h *PushHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req registerTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "token is required")
		return
	}

	var platform *model.Platform
	if req.Platform != nil {
		p := model.Platform(*req.Platform)
		if !p.Valid() {
			respondWithError(w, http.StatusBadRequest, "platform must be ios or android")
			return
		}
		platform = &p
	}

	record, err := h.push.Register(r.Context(), subject, req.Token, platform)
	if err != nil {
		h.respondWithServiceError(w, err, "failed to register token")
		return
	}

	respondWithJSON(w, http.StatusOK, toPushTokenResponse(record))
}

// HandleUnregister handles DELETE /push/tokens. Idempotent: succeeds whether
// or not a matching record existed.
func (h *PushHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req unregisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.push.Unregister(r.Context(), subject, req.Token); err != nil {
		h.respondWithServiceError(w, err, "failed to unregister token")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleList handles GET /push/tokens
func (h *PushHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	records, err := h.push.List(r.Context(), subject)
	if err != nil {
		h.respondWithServiceError(w, err, "failed to list tokens")
		return
	}

	tokens := make([]pushTokenResponse, 0, len(records))
	for _, record := range records {
		tokens = append(tokens, toPushTokenResponse(record))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"tokens": tokens})
}

// HandleSendTest handles POST /push/test
func (h *PushHandler) HandleSendTest(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if !h.sendLimiter.Allow("subject:" + subject) {
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req sendTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && r.ContentLength > 0 {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.push.SendTest(r.Context(), subject, strings.TrimSpace(req.Title), strings.TrimSpace(req.Body))
	if err != nil {
		switch {
		case errors.Is(err, push.ErrNoTokens):
			respondWithError(w, http.StatusBadRequest, "no registered push tokens")
		case errors.Is(err, push.ErrBootstrapRequired):
			respondWithError(w, http.StatusConflict, "run user bootstrap first")
		default:
			respondWithError(w, http.StatusBadGateway, "failed to deliver test notification")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *PushHandler) respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, push.ErrBootstrapRequired) {
		respondWithError(w, http.StatusConflict, "run user bootstrap first")
		return
	}
	respondWithError(w, http.StatusInternalServerError, fallback)
}
