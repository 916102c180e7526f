package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardvault/cardvault/internal/auth"
	"github.com/cardvault/cardvault/internal/cache"
	"github.com/cardvault/cardvault/internal/metrics"
	"github.com/cardvault/cardvault/internal/model"
	"github.com/cardvault/cardvault/internal/policy"
	"github.com/cardvault/cardvault/internal/repository"
	"github.com/cardvault/cardvault/internal/validate"
)

// UserService handles user business logic.
type UserService struct {
	repo    *repository.Repository
	cache   *cache.Cache
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.Repository, cache *cache.Cache, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		repo:    repo,
		cache:   cache,
		metrics: recorder,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Firstname      string
	Lastname       string
	Email          string
	Address        string
	Country        string
	SubscriptionID string

	// Roles defaults to the plain USER role when empty. Callers never
	// set this from request data; only trusted entry points (the admin
	// bootstrap command) pass it.
	Roles []string
}

// Register creates a new user with a freshly generated API key.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	apiKey, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}

	roles := input.Roles
	if len(roles) == 0 {
		roles = []string{model.RoleUser}
	}

	user := &model.User{
		ID:             newID(),
		Firstname:      input.Firstname,
		Lastname:       input.Lastname,
		Email:          input.Email,
		APIKey:         apiKey,
		CreatedAt:      time.Now().UTC(),
		Address:        input.Address,
		Country:        input.Country,
		SubscriptionID: input.SubscriptionID,
		Roles:          roles,
	}

	// A supplied subscription id must resolve before anything else runs;
	// an absent one falls through to the validation violation instead.
	if user.SubscriptionID != "" {
		if _, err := s.repo.GetSubscriptionByID(ctx, user.SubscriptionID); err != nil {
			if errors.Is(err, repository.ErrSubscriptionNotFound) {
				return nil, ErrSubscriptionNotFound
			}
			return nil, err
		}
	}

	violations := validate.User(user)
	if err := s.appendUserUniqueness(ctx, user, &violations); err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		s.metrics.IncValidationFailed()
		return nil, &ValidationError{Violations: violations}
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		// A concurrent registration can win the unique index between the
		// check above and the insert; surface it as the same violation.
		if ve, ok := uniquenessRace(err, "email", "apiKey"); ok {
			s.metrics.IncValidationFailed()
			return nil, ve
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return s.attachRelations(ctx, user)
}

// List retrieves all users with their subscription and cards attached.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if _, err := s.attachRelations(ctx, user); err != nil {
			return nil, err
		}
	}

	return users, nil
}

// GetByEmail retrieves one user by email with relations attached.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.attachRelations(ctx, user)
}

// Get retrieves one user by ID with relations attached.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.attachRelations(ctx, user)
}

// Patch applies a selective-field edit to a user. The allowlist table
// is picked from the actor's tier; a self-service actor may only edit
// their own profile. The whole edit commits or none of it does.
func (s *UserService) Patch(ctx context.Context, actor *model.Actor, userID string, fields policy.FieldSet) (*model.User, error) {
	table := policy.UserSelf
	if actor.IsAdmin() {
		table = policy.UserAdmin
	} else if actor.UserID != userID {
		s.metrics.IncOwnershipDenied()
		return nil, ErrNotProfileOwner
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	oldAPIKey := user.APIKey

	// Mutate a copy so a rejected edit leaves no partial state.
	updated := *user
	if err := policy.ApplyUser(&updated, fields, table); err != nil {
		return nil, err
	}

	// The subscription reference is resolved against the store rather
	// than applied as a scalar. An unknown ID fails the whole patch
	// before anything is committed.
	if fields.Has(policy.SubscriptionField) {
		subID, ok, err := fields.StringValue(policy.SubscriptionField)
		if err != nil {
			return nil, err
		}
		if ok {
			if _, err := s.repo.GetSubscriptionByID(ctx, subID); err != nil {
				if errors.Is(err, repository.ErrSubscriptionNotFound) {
					return nil, ErrSubscriptionNotFound
				}
				return nil, err
			}
			updated.SubscriptionID = subID
		}
	}

	violations := validate.User(&updated)
	if err := s.appendUserUniqueness(ctx, &updated, &violations); err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		s.metrics.IncValidationFailed()
		return nil, &ValidationError{Violations: violations}
	}

	if err := s.repo.UpdateUser(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		if ve, ok := uniquenessRace(err, "email", "apiKey"); ok {
			s.metrics.IncValidationFailed()
			return nil, ve
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.metrics.IncUserPatched()

	// Drop stale cached identities for both the old and new credential.
	if s.cache != nil {
		_ = s.cache.DeleteActor(ctx, auth.QuickHash(oldAPIKey))
		if updated.APIKey != oldAPIKey {
			_ = s.cache.DeleteActor(ctx, auth.QuickHash(updated.APIKey))
		}
	}

	return s.attachRelations(ctx, &updated)
}

// Delete removes a user together with every card the user owns.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.metrics.IncUserDeleted()

	if s.cache != nil {
		_ = s.cache.DeleteActor(ctx, auth.QuickHash(user.APIKey))
	}

	return nil
}

// appendUserUniqueness adds store-backed uniqueness violations for the
// user's email and API key, excluding the user's own row.
func (s *UserService) appendUserUniqueness(ctx context.Context, user *model.User, violations *validate.Violations) error {
	if user.Email != "" {
		taken, err := s.repo.EmailInUse(ctx, user.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			violations.Add(validate.MsgEmailTaken, "email")
		}
	}

	if user.APIKey != "" {
		taken, err := s.repo.APIKeyInUse(ctx, user.APIKey, user.ID)
		if err != nil {
			return err
		}
		if taken {
			violations.Add(validate.MsgAPIKeyTaken, "apiKey")
		}
	}

	return nil
}

// attachRelations populates the user's subscription and card collection
// for serialization.
func (s *UserService) attachRelations(ctx context.Context, user *model.User) (*model.User, error) {
	if user.SubscriptionID != "" {
		sub, err := s.repo.GetSubscriptionByID(ctx, user.SubscriptionID)
		if err != nil && !errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, err
		}
		user.Subscription = sub
	}

	cards, err := s.repo.ListCardsByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Cards = cards

	return user, nil
}

// uniquenessRace maps a unique-constraint insert or update failure back
// to the violation the pre-check would have produced.
func uniquenessRace(err error, emailPath, apiKeyPath string) (*ValidationError, bool) {
	var v validate.Violations
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		v.Add(validate.MsgEmailTaken, emailPath)
	case errors.Is(err, repository.ErrAPIKeyExists):
		v.Add(validate.MsgAPIKeyTaken, apiKeyPath)
	default:
		return nil, false
	}
	return &ValidationError{Violations: v}, true
}
