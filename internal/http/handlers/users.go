package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/airborne/server/internal/middleware"
	"github.com/airborne/server/internal/model"
	"github.com/airborne/server/internal/repo"
	"github.com/airborne/server/internal/users"
)

// UserHandler handles user bootstrap and profile endpoints
type UserHandler struct {
	users *users.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *users.Service) *UserHandler {
	return &UserHandler{users: userService}
}

// bootstrapRequest is the request body for POST /users/bootstrap. All fields
// are optional; absent fields leave stored values untouched.
type bootstrapRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	ImageURL *string `json:"image_url"`
}

// userResponse is the user object in API responses
type userResponse struct {
	ID         string  `json:"id"`
	Subject    string  `json:"subject"`
	Email      *string `json:"email,omitempty"`
	Name       *string `json:"name,omitempty"`
	ImageURL   *string `json:"image_url,omitempty"`
	LastSeenAt string  `json:"last_seen_at"`
}

func toUserResponse(user model.User) userResponse {
	return userResponse{
		ID:         user.ID.String(),
		Subject:    user.Subject,
		Email:      user.Email,
		Name:       user.Name,
		ImageURL:   user.ImageURL,
		LastSeenAt: user.LastSeenAt.Format(time.RFC3339),
	}
}

// HandleBootstrap handles POST /users/bootstrap. Idempotent: creates the
// caller's record on first call and patches it afterwards.
func (h *UserHandler) HandleBootstrap(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req bootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && r.ContentLength > 0 {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Bootstrap(r.Context(), subject, repo.BootstrapParams{
		Email:    req.Email,
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to bootstrap user")
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleMe handles GET /users/me. Returns 404 until bootstrap has run.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.Current(r.Context(), subject)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if user == nil {
		respondWithError(w, http.StatusNotFound, "user not found; run bootstrap first")
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(*user))
}
