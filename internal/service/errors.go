// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"

	"github.com/cardvault/cardvault/internal/validate"
)

// Service errors.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrCardNotFound         = errors.New("card not found")
	ErrNotCardOwner         = errors.New("you are not the owner of this card")
	ErrNotProfileOwner      = errors.New("you are not allowed to edit this user")
	ErrSubscriptionInUse    = errors.New("subscription has at least one user")
	ErrCardNoOwner          = errors.New("card has no owner")
)

// ValidationError carries the full violation list collected during one
// validation run. The request is rejected as a whole; nothing was
// committed.
type ValidationError struct {
	Violations validate.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d violation(s)", len(e.Violations))
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
