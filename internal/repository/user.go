package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/cardvault/cardvault/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
	ErrAPIKeyExists = errors.New("api key already exists")
)

const userColumns = "id, firstname, lastname, email, api_key, created_at, address, country, subscription_id, roles"

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, firstname, lastname, email, api_key, created_at, address, country, subscription_id, roles)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Firstname,
		user.Lastname,
		user.Email,
		user.APIKey,
		user.CreatedAt,
		user.Address,
		user.Country,
		user.SubscriptionID,
		pq.Array(user.Roles),
	)

	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return ErrEmailExists
		}
		if isUniqueViolation(err, "users_api_key_key") {
			return ErrAPIKeyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetUserByAPIKey retrieves a user by their API key.
// This is the authentication lookup path.
func (r *Repository) GetUserByAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE api_key = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, apiKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by api key: %w", err)
	}

	return user, nil
}

// ListUsers retrieves all users ordered by creation time.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateUser persists the mutable fields of a user in one statement.
// Roles and created_at are immutable after creation.
func (r *Repository) UpdateUser(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET firstname = $2, lastname = $3, email = $4, api_key = $5, address = $6, country = $7, subscription_id = $8
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Firstname,
		user.Lastname,
		user.Email,
		user.APIKey,
		user.Address,
		user.Country,
		user.SubscriptionID,
	)

	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return ErrEmailExists
		}
		if isUniqueViolation(err, "users_api_key_key") {
			return ErrAPIKeyExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DeleteUser removes a user and every card the user owns in one
// transaction, keeping the owner index and the store in sync.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM cards WHERE owner_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete user cards: %w", err)
		}

		result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

// EmailInUse reports whether another user already registered the email.
func (r *Repository) EmailInUse(ctx context.Context, email, excludeUserID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email, excludeUserID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	return exists, nil
}

// APIKeyInUse reports whether another user already holds the API key.
func (r *Repository) APIKeyInUse(ctx context.Context, apiKey, excludeUserID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE api_key = $1 AND id <> $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, apiKey, excludeUserID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check api key: %w", err)
	}

	return exists, nil
}

// scanUser scans a single row into a User model.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	var roles []string

	err := row.Scan(
		&user.ID,
		&user.Firstname,
		&user.Lastname,
		&user.Email,
		&user.APIKey,
		&user.CreatedAt,
		&user.Address,
		&user.Country,
		&user.SubscriptionID,
		pq.Array(&roles),
	)
	if err != nil {
		return nil, err
	}

	user.Roles = roles
	return &user, nil
}
