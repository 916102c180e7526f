package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardvault/cardvault/internal/metrics"
	"github.com/cardvault/cardvault/internal/model"
	"github.com/cardvault/cardvault/internal/policy"
	"github.com/cardvault/cardvault/internal/repository"
	"github.com/cardvault/cardvault/internal/validate"
)

// CardService handles card business logic. Every read and write on a
// single card passes the ownership guard: a self-service actor must be
// the card's owner, an administrative actor bypasses the check.
type CardService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewCardService creates a new CardService.
func NewCardService(repo *repository.Repository, recorder metrics.Recorder) *CardService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CardService{
		repo:    repo,
		metrics: recorder,
	}
}

// ListOwn retrieves the actor's own card collection.
func (s *CardService) ListOwn(ctx context.Context, actor *model.Actor) ([]*model.Card, error) {
	return s.repo.ListCardsByOwner(ctx, actor.UserID)
}

// ListAll retrieves every card in the store. Administrative tier only;
// the route guard enforces that.
func (s *CardService) ListAll(ctx context.Context) ([]*model.Card, error) {
	return s.repo.ListCards(ctx)
}

// Get retrieves one card, subject to the ownership guard.
func (s *CardService) Get(ctx context.Context, actor *model.Actor, cardID string) (*model.Card, error) {
	card, err := s.repo.GetCardByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	if err := s.guardOwner(actor, card); err != nil {
		return nil, err
	}

	return card, nil
}

// CreateCardInput defines input for creating a card.
type CreateCardInput struct {
	Name             string
	CreditCardType   string
	CreditCardNumber string
	CurrencyCode     string
	Value            int64

	// OwnerID is settable only through the administrative endpoint; the
	// self-service handler always passes the actor's own ID.
	OwnerID string
}

// Create creates a new card attached to its owner.
func (s *CardService) Create(ctx context.Context, input CreateCardInput) (*model.Card, error) {
	if _, err := s.repo.GetUserByID(ctx, input.OwnerID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	card := &model.Card{
		ID:               newID(),
		Name:             input.Name,
		CreditCardType:   input.CreditCardType,
		CreditCardNumber: input.CreditCardNumber,
		CurrencyCode:     input.CurrencyCode,
		Value:            input.Value,
		OwnerID:          input.OwnerID,
	}

	violations := validate.Card(card)
	if err := s.appendCardUniqueness(ctx, card, &violations); err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		s.metrics.IncValidationFailed()
		return nil, &ValidationError{Violations: violations}
	}

	if err := s.repo.CreateCard(ctx, card); err != nil {
		if errors.Is(err, repository.ErrCardNumExists) {
			s.metrics.IncValidationFailed()
			return nil, numberTakenError()
		}
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	s.metrics.IncCardCreated()

	return card, nil
}

// Patch applies a selective-field edit to a card, subject to the
// ownership guard. Ownership itself is not patchable; a card stays with
// its owner for life.
func (s *CardService) Patch(ctx context.Context, actor *model.Actor, cardID string, fields policy.FieldSet) (*model.Card, error) {
	card, err := s.repo.GetCardByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	if err := s.guardOwner(actor, card); err != nil {
		return nil, err
	}

	updated := *card
	if err := policy.ApplyCard(&updated, fields); err != nil {
		return nil, err
	}

	violations := validate.Card(&updated)
	if err := s.appendCardUniqueness(ctx, &updated, &violations); err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		s.metrics.IncValidationFailed()
		return nil, &ValidationError{Violations: violations}
	}

	if err := s.repo.UpdateCard(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrCardNotFound):
			return nil, ErrCardNotFound
		case errors.Is(err, repository.ErrCardNumExists):
			s.metrics.IncValidationFailed()
			return nil, numberTakenError()
		}
		return nil, fmt.Errorf("failed to update card: %w", err)
	}

	s.metrics.IncCardPatched()

	return &updated, nil
}

// Delete removes a card, subject to the ownership guard. The owner is
// resolved through the card's owner reference before the delete so a
// self-service actor can never remove someone else's card.
func (s *CardService) Delete(ctx context.Context, actor *model.Actor, cardID string) error {
	ownerID, err := s.repo.CardOwner(ctx, cardID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCardNotFound):
			return ErrCardNotFound
		case errors.Is(err, repository.ErrCardNoOwner):
			return fmt.Errorf("%w: card %s", ErrCardNoOwner, cardID)
		}
		return err
	}

	if !actor.IsAdmin() && ownerID != actor.UserID {
		s.metrics.IncOwnershipDenied()
		return ErrNotCardOwner
	}

	if _, err := s.repo.DeleteCard(ctx, cardID); err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			return ErrCardNotFound
		}
		return err
	}

	s.metrics.IncCardDeleted()

	return nil
}

// guardOwner enforces the ownership guard on a loaded card.
func (s *CardService) guardOwner(actor *model.Actor, card *model.Card) error {
	if card.OwnerID == "" {
		return fmt.Errorf("%w: card %s", ErrCardNoOwner, card.ID)
	}
	if !actor.IsAdmin() && card.OwnerID != actor.UserID {
		s.metrics.IncOwnershipDenied()
		return ErrNotCardOwner
	}
	return nil
}

// appendCardUniqueness adds the store-backed uniqueness violation for
// the card number, excluding the card's own row.
func (s *CardService) appendCardUniqueness(ctx context.Context, card *model.Card, violations *validate.Violations) error {
	if card.CreditCardNumber == "" {
		return nil
	}

	taken, err := s.repo.CardNumberInUse(ctx, card.CreditCardNumber, card.ID)
	if err != nil {
		return err
	}
	if taken {
		violations.Add(validate.MsgCardNumTaken, "creditCardNumber")
	}

	return nil
}

// numberTakenError is the violation produced when a concurrent write
// wins the card number unique index.
func numberTakenError() *ValidationError {
	var v validate.Violations
	v.Add(validate.MsgCardNumTaken, "creditCardNumber")
	return &ValidationError{Violations: v}
}
