// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/cardvault/cardvault/internal/model"
)

// RegisterRequest represents the self-registration request body.
type RegisterRequest struct {
	Firstname    string `json:"firstname"`
	Lastname     string `json:"lastname"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	Country      string `json:"country"`
	Subscription string `json:"subscription"`
}

// CreateSubscriptionRequest represents the admin subscription creation body.
type CreateSubscriptionRequest struct {
	Name   string `json:"name"`
	Slogan string `json:"slogan"`
	URL    string `json:"url,omitempty"`
}

// CreateCardRequest represents a card creation body. User is honored
// only on the administrative endpoint; the self-service handler ignores
// it and attaches the card to the caller.
type CreateCardRequest struct {
	Name             string `json:"name"`
	CreditCardType   string `json:"creditCardType"`
	CreditCardNumber string `json:"creditCardNumber"`
	CurrencyCode     string `json:"currencyCode"`
	Value            int64  `json:"value"`
	User             string `json:"user,omitempty"`
}

// MessageResponse represents a single-message error or status response.
type MessageResponse struct {
	Message string `json:"message"`
}

// SubscriptionRef is the nested subscription view embedded in user
// responses. It never exposes the subscription id.
type SubscriptionRef struct {
	Name   string `json:"name"`
	Slogan string `json:"slogan"`
	URL    string `json:"url,omitempty"`
}

// CardName is the card view embedded in the anonymous user response.
type CardName struct {
	Name string `json:"name"`
}

// AnonymousUser is the public catalog view of a user.
type AnonymousUser struct {
	Firstname    string           `json:"firstname"`
	Email        string           `json:"email"`
	Subscription *SubscriptionRef `json:"subscription,omitempty"`
	Cards        []CardName       `json:"cards"`
}

// Profile is the self-service view of the caller's own account. It is
// the only view that exposes the apiKey credential.
type Profile struct {
	Firstname    string           `json:"firstname"`
	Lastname     string           `json:"lastname"`
	Email        string           `json:"email"`
	APIKey       string           `json:"apiKey"`
	CreatedAt    time.Time        `json:"createdAt"`
	Address      string           `json:"address"`
	Country      string           `json:"country"`
	Subscription *SubscriptionRef `json:"subscription,omitempty"`
}

// ToSubscriptionRef converts a subscription to its nested view.
func ToSubscriptionRef(sub *model.Subscription) *SubscriptionRef {
	if sub == nil {
		return nil
	}
	return &SubscriptionRef{
		Name:   sub.Name,
		Slogan: sub.Slogan,
		URL:    sub.URL,
	}
}

// ToAnonymousUser converts a user to the public catalog view.
func ToAnonymousUser(user *model.User) *AnonymousUser {
	cards := make([]CardName, len(user.Cards))
	for i, card := range user.Cards {
		cards[i] = CardName{Name: card.Name}
	}
	return &AnonymousUser{
		Firstname:    user.Firstname,
		Email:        user.Email,
		Subscription: ToSubscriptionRef(user.Subscription),
		Cards:        cards,
	}
}

// ToAnonymousUserList converts a slice of users to the catalog view.
func ToAnonymousUserList(users []*model.User) []*AnonymousUser {
	views := make([]*AnonymousUser, len(users))
	for i, user := range users {
		views[i] = ToAnonymousUser(user)
	}
	return views
}

// ToProfile converts a user to the self-service profile view.
func ToProfile(user *model.User) *Profile {
	return &Profile{
		Firstname:    user.Firstname,
		Lastname:     user.Lastname,
		Email:        user.Email,
		APIKey:       user.APIKey,
		CreatedAt:    user.CreatedAt,
		Address:      user.Address,
		Country:      user.Country,
		Subscription: ToSubscriptionRef(user.Subscription),
	}
}
