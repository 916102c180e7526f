// Package validate implements the post-mutation validation pipeline.
// Validators collect every violation as a (message, propertyPath) pair
// instead of stopping at the first failure; callers commit only when
// the collected list is empty.
package validate

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/cardvault/cardvault/internal/model"
)

// Violation is a single constraint failure on one field.
type Violation struct {
	Message      string `json:"message"`
	PropertyPath string `json:"propertyPath"`
}

// Violations aggregates every failure found during one validation run.
type Violations []Violation

// Add appends a violation to the list.
func (v *Violations) Add(message, propertyPath string) {
	*v = append(*v, Violation{Message: message, PropertyPath: propertyPath})
}

// Merge appends all violations from another list.
func (v *Violations) Merge(other Violations) {
	*v = append(*v, other...)
}

// Messages reused across entities.
const (
	MsgNotBlank       = "This value should not be blank"
	MsgInvalidEmail   = "This value is not a valid email address"
	MsgEmailTaken     = "This email is already registered by an user"
	MsgAPIKeyTaken    = "This apikey is already used by an user"
	MsgCardNumTaken   = "This credit card number is already used by an user"
	MsgCurrencyFormat = "This value should be a 3-letter currency code"
	MsgNoSubscription = "Each user should have a subscription"
)

// User checks the structural constraints of a user.
// Uniqueness of email and apiKey needs store access and is appended by
// the service layer.
func User(u *model.User) Violations {
	var v Violations

	if strings.TrimSpace(u.Email) == "" {
		v.Add(MsgNotBlank, "email")
	} else if !ValidEmail(u.Email) {
		v.Add(MsgInvalidEmail, "email")
	}
	if u.SubscriptionID == "" {
		v.Add(MsgNoSubscription, "subscription")
	}

	return v
}

// Subscription checks the structural constraints of a subscription.
func Subscription(s *model.Subscription) Violations {
	var v Violations

	if strings.TrimSpace(s.Name) == "" {
		v.Add(MsgNotBlank, "name")
	}
	if strings.TrimSpace(s.Slogan) == "" {
		v.Add(MsgNotBlank, "slogan")
	}

	return v
}

// Card checks the structural constraints of a card.
// Number uniqueness needs store access and is appended by the service.
func Card(c *model.Card) Violations {
	var v Violations

	if strings.TrimSpace(c.Name) == "" {
		v.Add(MsgNotBlank, "name")
	}
	if strings.TrimSpace(c.CreditCardType) == "" {
		v.Add(MsgNotBlank, "creditCardType")
	}
	if strings.TrimSpace(c.CreditCardNumber) == "" {
		v.Add(MsgNotBlank, "creditCardNumber")
	}
	if strings.TrimSpace(c.CurrencyCode) == "" {
		v.Add(MsgNotBlank, "currencyCode")
	} else if !validCurrencyCode(c.CurrencyCode) {
		v.Add(MsgCurrencyFormat, "currencyCode")
	}

	return v
}

// ValidEmail reports whether the address parses as a bare RFC 5322
// address (no display name).
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}

// validCurrencyCode reports whether the code is exactly three letters.
func validCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
