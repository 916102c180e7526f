package auth

import (
	"context"
	"testing"

	"github.com/cardvault/cardvault/internal/model"
)

func TestGenerateAPIKey_Format(t *testing.T) {
	t.Parallel()

	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !ValidateKeyFormat(key) {
		t.Errorf("generated key does not match format: %s", key)
	}
}

func TestGenerateAPIKey_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if seen[key] {
			t.Fatalf("duplicate key generated: %s", key)
		}
		seen[key] = true
	}
}

func TestValidateKeyFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"valid", "ak_7a9f3b_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b", true},
		{"wrong prefix", "pk_7a9f3b_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b", false},
		{"short secret", "ak_7a9f3b_4f8d2e1b", false},
		{"uppercase hex", "ak_7A9F3B_4F8D2E1B9C7A5F3D2E1B9C7A5F3D2E1B", false},
		{"empty", "", false},
		{"admin-set arbitrary string", "my-custom-key", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidateKeyFormat(tt.key); got != tt.want {
				t.Errorf("ValidateKeyFormat(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestQuickHash_Deterministic(t *testing.T) {
	t.Parallel()

	a := QuickHash("some-key")
	b := QuickHash("some-key")
	c := QuickHash("other-key")

	if a != b {
		t.Errorf("hash not deterministic: %s != %s", a, b)
	}
	if a == c {
		t.Errorf("distinct inputs collided: %s", a)
	}
	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a))
	}
}

func TestActorContext_RoundTrip(t *testing.T) {
	t.Parallel()

	actor := &model.Actor{UserID: "user-1", Email: "a@example.com", Roles: []string{model.RoleUser}}

	ctx := ContextWithActor(context.Background(), actor)

	got := ActorFromContext(ctx)
	if got == nil || got.UserID != "user-1" {
		t.Fatalf("actor not round-tripped: %+v", got)
	}

	if ActorFromContext(context.Background()) != nil {
		t.Error("expected nil actor from empty context")
	}
}

func TestMustActorFromContext_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing actor")
		}
	}()

	MustActorFromContext(context.Background())
}
