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

// SubscriptionService handles subscription business logic.
type SubscriptionService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(repo *repository.Repository, recorder metrics.Recorder) *SubscriptionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SubscriptionService{
		repo:    repo,
		metrics: recorder,
	}
}

// List retrieves all subscriptions.
func (s *SubscriptionService) List(ctx context.Context) ([]*model.Subscription, error) {
	return s.repo.ListSubscriptions(ctx)
}

// Get retrieves one subscription by ID.
func (s *SubscriptionService) Get(ctx context.Context, id string) (*model.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	return sub, nil
}

// CreateSubscriptionInput defines input for creating a subscription.
type CreateSubscriptionInput struct {
	Name   string
	Slogan string
	URL    string
}

// Create creates a new subscription.
func (s *SubscriptionService) Create(ctx context.Context, input CreateSubscriptionInput) (*model.Subscription, error) {
	sub := &model.Subscription{
		ID:     newID(),
		Name:   input.Name,
		Slogan: input.Slogan,
		URL:    input.URL,
	}

	if violations := validate.Subscription(sub); len(violations) > 0 {
		s.metrics.IncValidationFailed()
		return nil, &ValidationError{Violations: violations}
	}

	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.metrics.IncSubscriptionCreated()

	return sub, nil
}

// Patch applies a selective-field edit to a subscription.
func (s *SubscriptionService) Patch(ctx context.Context, id string, fields policy.FieldSet) (*model.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	updated := *sub
	if err := policy.ApplySubscription(&updated, fields); err != nil {
		return nil, err
	}

	if violations := validate.Subscription(&updated); len(violations) > 0 {
		s.metrics.IncValidationFailed()
		return nil, &ValidationError{Violations: violations}
	}

	if err := s.repo.UpdateSubscription(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	s.metrics.IncSubscriptionPatched()

	return &updated, nil
}

// Delete removes a subscription unless a user still references it.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteSubscription(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrSubscriptionNotFound):
			return ErrSubscriptionNotFound
		case errors.Is(err, repository.ErrSubscriptionInUse):
			return ErrSubscriptionInUse
		}
		return err
	}

	s.metrics.IncSubscriptionDeleted()

	return nil
}
