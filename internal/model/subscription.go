package model

// Subscription represents a plan a user can register under.
// The relationship is navigated only from User to Subscription; whether
// a subscription is still referenced is answered by the user store.
type Subscription struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slogan string `json:"slogan"`
	URL    string `json:"url,omitempty"`
}
