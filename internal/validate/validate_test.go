package validate

import (
	"testing"

	"github.com/cardvault/cardvault/internal/model"
)

func TestUser_CollectsAllViolations(t *testing.T) {
	t.Parallel()

	v := User(&model.User{})

	if len(v) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(v), v)
	}

	paths := map[string]string{}
	for _, violation := range v {
		paths[violation.PropertyPath] = violation.Message
	}
	if paths["email"] != MsgNotBlank {
		t.Errorf("email violation = %q", paths["email"])
	}
	if paths["subscription"] != MsgNoSubscription {
		t.Errorf("subscription violation = %q", paths["subscription"])
	}
}

func TestUser_EmailFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"plain address", "alice@example.com", true},
		{"subaddress", "alice+tag@example.com", true},
		{"no at sign", "alice.example.com", false},
		{"no domain", "alice@", false},
		{"display name", "Alice <alice@example.com>", false},
		{"spaces", "alice @example.com", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidEmail(tt.email); got != tt.valid {
				t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.valid)
			}
		})
	}
}

func TestUser_InvalidEmailMessage(t *testing.T) {
	t.Parallel()

	v := User(&model.User{Email: "not-an-email", SubscriptionID: "sub-1"})

	if len(v) != 1 {
		t.Fatalf("expected 1 violation, got %d: %v", len(v), v)
	}
	if v[0].Message != MsgInvalidEmail || v[0].PropertyPath != "email" {
		t.Errorf("unexpected violation: %+v", v[0])
	}
}

func TestUser_Valid(t *testing.T) {
	t.Parallel()

	v := User(&model.User{Email: "alice@example.com", SubscriptionID: "sub-1"})
	if len(v) != 0 {
		t.Errorf("expected no violations, got %v", v)
	}
}

func TestSubscription(t *testing.T) {
	t.Parallel()

	v := Subscription(&model.Subscription{Name: "  ", Slogan: ""})
	if len(v) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(v), v)
	}

	v = Subscription(&model.Subscription{Name: "Gold", Slogan: "Everything"})
	if len(v) != 0 {
		t.Errorf("expected no violations, got %v", v)
	}
}

func TestCard_CollectsAllViolations(t *testing.T) {
	t.Parallel()

	v := Card(&model.Card{})

	if len(v) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(v), v)
	}
	for _, violation := range v {
		if violation.Message != MsgNotBlank {
			t.Errorf("unexpected message for %s: %q", violation.PropertyPath, violation.Message)
		}
	}
}

func TestCard_CurrencyCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		ok   bool
	}{
		{"upper", "EUR", true},
		{"lower", "eur", true},
		{"too short", "EU", false},
		{"too long", "EURO", false},
		{"digits", "EU1", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			card := &model.Card{
				Name:             "Card",
				CreditCardType:   "Visa",
				CreditCardNumber: "4111111111111111",
				CurrencyCode:     tt.code,
			}
			v := Card(card)
			if tt.ok && len(v) != 0 {
				t.Errorf("expected no violations, got %v", v)
			}
			if !tt.ok {
				if len(v) != 1 || v[0].Message != MsgCurrencyFormat || v[0].PropertyPath != "currencyCode" {
					t.Errorf("expected currency violation, got %v", v)
				}
			}
		})
	}
}

func TestViolations_AddMerge(t *testing.T) {
	t.Parallel()

	var a Violations
	a.Add(MsgNotBlank, "name")

	var b Violations
	b.Add(MsgEmailTaken, "email")
	b.Merge(a)

	if len(b) != 2 {
		t.Fatalf("expected 2 violations after merge, got %d", len(b))
	}
	if b[1].PropertyPath != "name" {
		t.Errorf("merge order wrong: %+v", b)
	}
}
