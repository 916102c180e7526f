package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cardvault/cardvault/internal/model"
)

// Common errors for card repository operations.
var (
	ErrCardNotFound  = errors.New("card not found")
	ErrCardNumExists = errors.New("credit card number already exists")
	ErrCardNoOwner   = errors.New("card has no owner")
)

const cardColumns = "id, name, credit_card_type, credit_card_number, currency_code, value, owner_id"

// CreateCard inserts a new card attached to its owner.
// The owner index entry is part of the row, so membership in the
// owner's collection and existence in the store are one fact.
func (r *Repository) CreateCard(ctx context.Context, card *model.Card) error {
	query := `
		INSERT INTO cards (id, name, credit_card_type, credit_card_number, currency_code, value, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		card.ID,
		card.Name,
		card.CreditCardType,
		card.CreditCardNumber,
		card.CurrencyCode,
		card.Value,
		card.OwnerID,
	)

	if err != nil {
		if isUniqueViolation(err, "cards_credit_card_number_key") {
			return ErrCardNumExists
		}
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetCardByID retrieves a card by its ID.
func (r *Repository) GetCardByID(ctx context.Context, id string) (*model.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card by ID: %w", err)
	}

	return card, nil
}

// ListCards retrieves every card in the store.
func (r *Repository) ListCards(ctx context.Context) ([]*model.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY id`

	return r.queryCards(ctx, query)
}

// ListCardsByOwner retrieves the card collection of one user.
func (r *Repository) ListCardsByOwner(ctx context.Context, ownerID string) ([]*model.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE owner_id = $1 ORDER BY id`

	return r.queryCards(ctx, query, ownerID)
}

// CardOwner resolves the owning user of a card through the owner
// index. Exactly one owner resolves for an existing card; a row
// without an owner is a data-integrity failure, not a lookup miss.
func (r *Repository) CardOwner(ctx context.Context, cardID string) (string, error) {
	query := `SELECT owner_id FROM cards WHERE id = $1`

	var ownerID string
	err := r.pool.QueryRow(ctx, query, cardID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCardNotFound
		}
		return "", fmt.Errorf("failed to resolve card owner: %w", err)
	}

	if ownerID == "" {
		return "", ErrCardNoOwner
	}

	return ownerID, nil
}

// UpdateCard persists the mutable fields of a card.
func (r *Repository) UpdateCard(ctx context.Context, card *model.Card) error {
	query := `
		UPDATE cards
		SET name = $2, credit_card_type = $3, credit_card_number = $4, currency_code = $5, value = $6
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		card.ID,
		card.Name,
		card.CreditCardType,
		card.CreditCardNumber,
		card.CurrencyCode,
		card.Value,
	)

	if err != nil {
		if isUniqueViolation(err, "cards_credit_card_number_key") {
			return ErrCardNumExists
		}
		return fmt.Errorf("failed to update card: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCardNotFound
	}

	return nil
}

// DeleteCard removes a card and returns the owner it was removed from.
// Deleting the row removes it from the owner's collection and from the
// store in the same write.
func (r *Repository) DeleteCard(ctx context.Context, id string) (string, error) {
	query := `DELETE FROM cards WHERE id = $1 RETURNING owner_id`

	var ownerID string
	err := r.pool.QueryRow(ctx, query, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCardNotFound
		}
		return "", fmt.Errorf("failed to delete card: %w", err)
	}

	return ownerID, nil
}

// CardNumberInUse reports whether another card already carries the
// number.
func (r *Repository) CardNumberInUse(ctx context.Context, number, excludeCardID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM cards WHERE credit_card_number = $1 AND id <> $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, number, excludeCardID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check card number: %w", err)
	}

	return exists, nil
}

// queryCards runs a card select and scans all rows.
func (r *Repository) queryCards(ctx context.Context, query string, args ...any) ([]*model.Card, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []*model.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}

// scanCard scans a single row into a Card model.
func scanCard(row pgx.Row) (*model.Card, error) {
	var card model.Card
	err := row.Scan(
		&card.ID,
		&card.Name,
		&card.CreditCardType,
		&card.CreditCardNumber,
		&card.CurrencyCode,
		&card.Value,
		&card.OwnerID,
	)
	if err != nil {
		return nil, err
	}
	return &card, nil
}
