// Package testutil provides helpers for env-gated integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cardvault/cardvault/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420421

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates the full schema for tests.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", "000001_schema.down.sql")
	upPath := filepath.Join(root, "migrations", "000001_schema.up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestSubscription creates a test subscription with sensible defaults.
func NewTestSubscription(t testing.TB, name string) *model.Subscription {
	t.Helper()
	return &model.Subscription{
		ID:     UniqueID("sub"),
		Name:   name,
		Slogan: name + " slogan",
		URL:    "https://example.com/" + name,
	}
}

// NewTestUser creates a test user attached to the given subscription.
func NewTestUser(t testing.TB, subscriptionID string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	id := UniqueID("user")
	return &model.User{
		ID:             id,
		Firstname:      "Test",
		Lastname:       "User",
		Email:          UniqueEmail(),
		APIKey:         fmt.Sprintf("ak_test_%d", now.UnixNano()),
		CreatedAt:      now,
		Address:        "1 Test Street",
		Country:        "France",
		SubscriptionID: subscriptionID,
		Roles:          []string{model.RoleUser},
	}
}

// NewTestAdmin creates a test user carrying the ADMIN role.
func NewTestAdmin(t testing.TB, subscriptionID string) *model.User {
	t.Helper()
	user := NewTestUser(t, subscriptionID)
	user.Roles = []string{model.RoleUser, model.RoleAdmin}
	return user
}

// NewTestCard creates a test card owned by the given user.
func NewTestCard(t testing.TB, ownerID string) *model.Card {
	t.Helper()
	return &model.Card{
		ID:               UniqueID("card"),
		Name:             "Test Card",
		CreditCardType:   "Visa",
		CreditCardNumber: fmt.Sprintf("%d", time.Now().UnixNano()),
		CurrencyCode:     "EUR",
		Value:            1000,
		OwnerID:          ownerID,
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail() string {
	return fmt.Sprintf("test-%d@example.com", time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
