// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// Role constants for user authorization.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleUser, RoleAdmin}

// User represents a registered account.
// Every user references exactly one subscription; cards owned by the
// user are resolved through the card owner index, not stored here.
type User struct {
	ID             string    `json:"id"`
	Firstname      string    `json:"firstname"`
	Lastname       string    `json:"lastname"`
	Email          string    `json:"email"`
	APIKey         string    `json:"apiKey"`
	CreatedAt      time.Time `json:"createdAt"`
	Address        string    `json:"address"`
	Country        string    `json:"country"`
	SubscriptionID string    `json:"-"`
	Roles          []string  `json:"-"` // never caller-settable

	// Subscription is populated on reads that expose the nested view.
	Subscription *Subscription `json:"subscription,omitempty"`
	// Cards is populated only for views tagged to expose it.
	Cards []*Card `json:"cards,omitempty"`
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u *User) IsAdmin() bool {
	return slices.Contains(u.Roles, RoleAdmin)
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// Actor is the caller identity injected by the auth middleware.
// Tier is derived from the role set: ADMIN grants the administrative
// tier, everything else is self-service.
type Actor struct {
	UserID string
	Email  string
	Roles  []string
}

// IsAdmin reports whether the actor acts at the administrative tier.
func (a *Actor) IsAdmin() bool {
	return slices.Contains(a.Roles, RoleAdmin)
}
