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

// AdminHandler handles the administrative tier: full CRUD over users,
// subscriptions, and cards. Routes mounting this handler must run the
// admin role gate; the handlers still pass the actor down so the
// service applies the administrative allowlists.
type AdminHandler struct {
	users  *service.UserService
	subs   *service.SubscriptionService
	cards  *service.CardService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users *service.UserService, subs *service.SubscriptionService, cards *service.CardService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:  users,
		subs:   subs,
		cards:  cards,
		logger: logger,
	}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/admin/users/{email}.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// PatchUser handles PATCH /api/admin/users/{email}.
func (h *AdminHandler) PatchUser(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())
	email := chi.URLParam(r, "email")

	fields, err := decodePatch(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	updated, err := h.users.Patch(r.Context(), actor, user.ID, fields)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("admin_user_updated", "user_id", updated.ID, "admin_id", actor.UserID)

	writeJSON(w, http.StatusAccepted, updated)
}

// DeleteUser handles DELETE /api/admin/users/{email}.
// The user's cards go with the user.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())
	email := chi.URLParam(r, "email")

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("admin_user_deleted", "user_id", user.ID, "admin_id", actor.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions handles GET /api/admin/subscriptions.
func (h *AdminHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subs.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, subs)
}

// GetSubscription handles GET /api/admin/subscriptions/{id}.
func (h *AdminHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.subs.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

// CreateSubscription handles POST /api/admin/subscriptions.
func (h *AdminHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.subs.Create(r.Context(), service.CreateSubscriptionInput{
		Name:   req.Name,
		Slogan: req.Slogan,
		URL:    req.URL,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("subscription_created", "subscription_id", sub.ID)

	writeJSON(w, http.StatusCreated, sub)
}

// PatchSubscription handles PATCH /api/admin/subscriptions/{id}.
func (h *AdminHandler) PatchSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	fields, err := decodePatch(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.subs.Patch(r.Context(), id, fields)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("subscription_updated", "subscription_id", sub.ID)

	writeJSON(w, http.StatusAccepted, sub)
}

// DeleteSubscription handles DELETE /api/admin/subscriptions/{id}.
// Refused while any user still references the subscription.
func (h *AdminHandler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.subs.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("subscription_deleted", "subscription_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// ListCards handles GET /api/admin/cards.
func (h *AdminHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// GetCard handles GET /api/admin/cards/{id}.
func (h *AdminHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	card, err := h.cards.Get(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// CreateCard handles POST /api/admin/cards. The body's "user" field
// names the owner the card is attached to.
func (h *AdminHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, err := h.cards.Create(r.Context(), service.CreateCardInput{
		Name:             req.Name,
		CreditCardType:   req.CreditCardType,
		CreditCardNumber: req.CreditCardNumber,
		CurrencyCode:     req.CurrencyCode,
		Value:            req.Value,
		OwnerID:          req.User,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("admin_card_created", "card_id", card.ID, "owner_id", req.User)

	writeJSON(w, http.StatusCreated, card)
}

// PatchCard handles PATCH /api/admin/cards/{id}.
func (h *AdminHandler) PatchCard(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	fields, err := decodePatch(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, err := h.cards.Patch(r.Context(), actor, id, fields)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("admin_card_updated", "card_id", card.ID, "admin_id", actor.UserID)

	writeJSON(w, http.StatusAccepted, card)
}

// DeleteCard handles DELETE /api/admin/cards/{id}. The true owner is
// resolved through the owner index before the row goes away.
func (h *AdminHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.cards.Delete(r.Context(), actor, id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("admin_card_deleted", "card_id", id, "admin_id", actor.UserID)

	w.WriteHeader(http.StatusNoContent)
}
