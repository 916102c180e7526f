package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardvault/cardvault/internal/auth"
	"github.com/cardvault/cardvault/internal/handler/dto"
	"github.com/cardvault/cardvault/internal/service"
)

// UserHandler handles the anonymous user catalog, registration, and the
// authenticated profile endpoints.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// ListAnonymous handles GET /api/anonymous/users.
func (h *UserHandler) ListAnonymous(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAnonymousUserList(users))
}

// GetAnonymous handles GET /api/anonymous/users/{email}.
func (h *UserHandler) GetAnonymous(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	user, err := h.svc.GetByEmail(r.Context(), email)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAnonymousUser(user))
}

// Register handles POST /api/anonymous/register.
// The response is the profile view: it is the only time the caller sees
// the generated apiKey without already holding it.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Firstname:      req.Firstname,
		Lastname:       req.Lastname,
		Email:          req.Email,
		Address:        req.Address,
		Country:        req.Country,
		SubscriptionID: req.Subscription,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.ToProfile(user))
}

// Profile handles GET /api/profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())

	user, err := h.svc.Get(r.Context(), actor.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProfile(user))
}

// PatchProfile handles PATCH /api/profile.
func (h *UserHandler) PatchProfile(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())

	fields, err := decodePatch(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.Patch(r.Context(), actor, actor.UserID, fields)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("profile_updated", "user_id", user.ID)

	writeJSON(w, http.StatusAccepted, dto.ToProfile(user))
}
