package model

// Card represents a payment card owned by exactly one user.
// OwnerID is the owner index entry; it is internal bookkeeping and is
// never serialized, matching the read model where ownership is not a
// card attribute.
type Card struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	CreditCardType   string `json:"creditCardType"`
	CreditCardNumber string `json:"creditCardNumber"`
	CurrencyCode     string `json:"currencyCode"`
	Value            int64  `json:"value"`
	OwnerID          string `json:"-"`
}
