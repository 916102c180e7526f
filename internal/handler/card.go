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

// CardHandler handles the self-service card endpoints. Every operation
// runs as the authenticated actor; the service enforces the ownership
// guard.
type CardHandler struct {
	svc    *service.CardService
	logger *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(svc *service.CardService, logger *slog.Logger) *CardHandler {
	return &CardHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/cards.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())

	cards, err := h.svc.ListOwn(r.Context(), actor)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// Get handles GET /api/cards/{id}.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	card, err := h.svc.Get(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// Create handles POST /api/cards. The card is always attached to the
// caller, whatever the body says about ownership.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())

	var req dto.CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, err := h.svc.Create(r.Context(), service.CreateCardInput{
		Name:             req.Name,
		CreditCardType:   req.CreditCardType,
		CreditCardNumber: req.CreditCardNumber,
		CurrencyCode:     req.CurrencyCode,
		Value:            req.Value,
		OwnerID:          actor.UserID,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("card_created", "card_id", card.ID, "user_id", actor.UserID)

	writeJSON(w, http.StatusCreated, card)
}

// Patch handles PATCH /api/cards/{id}.
func (h *CardHandler) Patch(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	fields, err := decodePatch(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, err := h.svc.Patch(r.Context(), actor, id, fields)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("card_updated", "card_id", card.ID, "user_id", actor.UserID)

	writeJSON(w, http.StatusAccepted, card)
}

// Delete handles DELETE /api/cards/{id}.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("card_deleted", "card_id", id, "user_id", actor.UserID)

	w.WriteHeader(http.StatusNoContent)
}
