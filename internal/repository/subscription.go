package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cardvault/cardvault/internal/model"
)

// Common errors for subscription repository operations.
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionInUse    = errors.New("subscription has at least one user")
)

const subscriptionColumns = "id, name, slogan, url"

// CreateSubscription inserts a new subscription into the database.
func (r *Repository) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, name, slogan, url)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, sub.ID, sub.Name, sub.Slogan, sub.URL)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// GetSubscriptionByID retrieves a subscription by its ID.
func (r *Repository) GetSubscriptionByID(ctx context.Context, id string) (*model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	var sub model.Subscription
	err := r.pool.QueryRow(ctx, query, id).Scan(&sub.ID, &sub.Name, &sub.Slogan, &sub.URL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription by ID: %w", err)
	}

	return &sub, nil
}

// ListSubscriptions retrieves all subscriptions.
func (r *Repository) ListSubscriptions(ctx context.Context) ([]*model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY name, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*model.Subscription
	for rows.Next() {
		var sub model.Subscription
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Slogan, &sub.URL); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, &sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}

// UpdateSubscription persists the mutable fields of a subscription.
func (r *Repository) UpdateSubscription(ctx context.Context, sub *model.Subscription) error {
	query := `
		UPDATE subscriptions
		SET name = $2, slogan = $3, url = $4
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, sub.ID, sub.Name, sub.Slogan, sub.URL)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

// DeleteSubscription removes a subscription unless any user still
// references it. The reference check and the delete are a single
// statement, so the check cannot go stale between check and act.
func (r *Repository) DeleteSubscription(ctx context.Context, id string) error {
	query := `
		DELETE FROM subscriptions s
		WHERE s.id = $1
		  AND NOT EXISTS (SELECT 1 FROM users u WHERE u.subscription_id = s.id)
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Nothing deleted: either the subscription is unknown or it is
		// still referenced.
		inUse, err := r.SubscriptionInUse(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return ErrSubscriptionInUse
		}
		return ErrSubscriptionNotFound
	}

	return nil
}

// SubscriptionInUse reports whether any user references the
// subscription.
func (r *Repository) SubscriptionInUse(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE subscription_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check subscription references: %w", err)
	}

	return exists, nil
}
