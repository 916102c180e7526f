package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cardvault/cardvault/internal/model"
	"github.com/cardvault/cardvault/internal/policy"
	"github.com/cardvault/cardvault/internal/repository"
	"github.com/cardvault/cardvault/internal/testutil"
	"github.com/cardvault/cardvault/internal/validate"
)

type testServices struct {
	repo  *repository.Repository
	users *UserService
	subs  *SubscriptionService
	cards *CardService
}

func newTestServices(t *testing.T) (context.Context, *testServices) {
	t.Helper()
	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, &testServices{
		repo:  repo,
		users: NewUserService(repo, nil, nil),
		subs:  NewSubscriptionService(repo, nil),
		cards: NewCardService(repo, nil),
	}
}

func mustFields(t *testing.T, body string) policy.FieldSet {
	t.Helper()
	fields, err := policy.DecodeFields([]byte(body))
	if err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	return fields
}

func selfActor(user *model.User) *model.Actor {
	return &model.Actor{UserID: user.ID, Email: user.Email, Roles: user.Roles}
}

func adminActor() *model.Actor {
	return &model.Actor{UserID: "admin-actor", Email: "admin@example.com", Roles: []string{model.RoleUser, model.RoleAdmin}}
}

func mustSubscription(t *testing.T, ctx context.Context, svc *testServices, name string) *model.Subscription {
	t.Helper()
	sub, err := svc.subs.Create(ctx, CreateSubscriptionInput{Name: name, Slogan: name + " slogan"})
	if err != nil {
		t.Fatalf("create subscription %s: %v", name, err)
	}
	return sub
}

func mustRegister(t *testing.T, ctx context.Context, svc *testServices, subID string) *model.User {
	t.Helper()
	user, err := svc.users.Register(ctx, RegisterInput{
		Firstname:      "Alice",
		Lastname:       "Martin",
		Email:          testutil.UniqueEmail(),
		Address:        "1 rue de la Paix",
		Country:        "France",
		SubscriptionID: subID,
	})
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	return user
}

func mustCard(t *testing.T, ctx context.Context, svc *testServices, ownerID, number string) *model.Card {
	t.Helper()
	card, err := svc.cards.Create(ctx, CreateCardInput{
		Name:             "Main card",
		CreditCardType:   "Visa",
		CreditCardNumber: number,
		CurrencyCode:     "EUR",
		Value:            1000,
		OwnerID:          ownerID,
	})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	return card
}

func hasViolation(err error, message, path string) bool {
	ve, ok := AsValidationError(err)
	if !ok {
		return false
	}
	for _, v := range ve.Violations {
		if v.Message == message && v.PropertyPath == path {
			return true
		}
	}
	return false
}

func TestUserService_RegisterAndPatchProfile(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")
	user := mustRegister(t, ctx, svc, sub.ID)

	if user.APIKey == "" {
		t.Fatal("registered user has no api key")
	}
	if user.Subscription == nil || user.Subscription.ID != sub.ID {
		t.Fatalf("subscription not attached: %+v", user.Subscription)
	}

	updated, err := svc.users.Patch(ctx, selfActor(user), user.ID, mustFields(t, `{"firstname":"Bob","address":"2 avenue Foch"}`))
	if err != nil {
		t.Fatalf("patch profile: %v", err)
	}

	if updated.Firstname != "Bob" || updated.Address != "2 avenue Foch" {
		t.Errorf("patched fields not applied: %+v", updated)
	}
	if updated.Lastname != "Martin" || updated.Email != user.Email {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestUserService_SelfPatchCannotEscalate(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")
	user := mustRegister(t, ctx, svc, sub.ID)

	body := `{"firstname":"Eve","email":"stolen@example.com","apiKey":"ak_forged","roles":["ADMIN"],"id":"other","createdAt":"2020-01-01T00:00:00Z"}`
	updated, err := svc.users.Patch(ctx, selfActor(user), user.ID, mustFields(t, body))
	if err != nil {
		t.Fatalf("patch profile: %v", err)
	}

	if updated.Firstname != "Eve" {
		t.Errorf("allowed field not applied: %+v", updated)
	}
	if updated.Email != user.Email || updated.APIKey != user.APIKey || updated.ID != user.ID {
		t.Errorf("restricted fields mutated: %+v", updated)
	}

	reloaded, err := svc.users.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.IsAdmin() {
		t.Error("self patch escalated roles")
	}
}

func TestUserService_AdminPatchCredentials(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")
	user := mustRegister(t, ctx, svc, sub.ID)
	newEmail := testutil.UniqueEmail()

	updated, err := svc.users.Patch(ctx, adminActor(), user.ID, mustFields(t, `{"email":"`+newEmail+`","apiKey":"admin-set-key"}`))
	if err != nil {
		t.Fatalf("admin patch: %v", err)
	}

	if updated.Email != newEmail || updated.APIKey != "admin-set-key" {
		t.Errorf("admin allowlist fields not applied: %+v", updated)
	}
}

func TestUserService_PatchForeignProfileDenied(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")
	owner := mustRegister(t, ctx, svc, sub.ID)
	intruder := mustRegister(t, ctx, svc, sub.ID)

	_, err := svc.users.Patch(ctx, selfActor(intruder), owner.ID, mustFields(t, `{"firstname":"Hacked"}`))
	if !errors.Is(err, ErrNotProfileOwner) {
		t.Fatalf("expected ErrNotProfileOwner, got %v", err)
	}

	reloaded, err := svc.users.Get(ctx, owner.ID)
	if err != nil {
		t.Fatalf("reload owner: %v", err)
	}
	if reloaded.Firstname != "Alice" {
		t.Errorf("foreign patch mutated the profile: %+v", reloaded)
	}
}

func TestUserService_UnknownSubscriptionFailsPatchUntouched(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")
	user := mustRegister(t, ctx, svc, sub.ID)

	// The other fields in the body must not survive the failed FK
	// resolution.
	_, err := svc.users.Patch(ctx, selfActor(user), user.ID, mustFields(t, `{"firstname":"Zoe","subscription":"no-such-subscription"}`))
	if !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}

	reloaded, err := svc.users.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Firstname != "Alice" {
		t.Errorf("failed patch committed a field: %+v", reloaded)
	}
	if reloaded.SubscriptionID != sub.ID {
		t.Errorf("failed patch changed the subscription: %q", reloaded.SubscriptionID)
	}
}

func TestUserService_RegisterUnknownSubscriptionRejected(t *testing.T) {
	ctx, svc := newTestServices(t)

	email := testutil.UniqueEmail()
	_, err := svc.users.Register(ctx, RegisterInput{
		Firstname:      "Alice",
		Lastname:       "Martin",
		Email:          email,
		Address:        "1 rue de la Paix",
		Country:        "France",
		SubscriptionID: "no-such-subscription",
	})
	if !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}

	if _, err := svc.users.GetByEmail(ctx, email); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("rejected registration left a user behind: %v", err)
	}
}

func TestUserService_RegisterAggregatesViolations(t *testing.T) {
	ctx, svc := newTestServices(t)

	_, err := svc.users.Register(ctx, RegisterInput{Email: "not-an-email"})

	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Violations) != 2 {
		t.Errorf("expected both violations in one response, got %d: %+v", len(ve.Violations), ve.Violations)
	}
	if !hasViolation(err, validate.MsgInvalidEmail, "email") {
		t.Errorf("missing email format violation: %+v", ve.Violations)
	}
	if !hasViolation(err, validate.MsgNoSubscription, "subscription") {
		t.Errorf("missing subscription violation: %+v", ve.Violations)
	}
}

func TestUserService_DuplicateEmailRejected(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")
	first := mustRegister(t, ctx, svc, sub.ID)

	_, err := svc.users.Register(ctx, RegisterInput{
		Firstname:      "Alice",
		Lastname:       "Martin",
		Email:          first.Email,
		Address:        "1 rue de la Paix",
		Country:        "France",
		SubscriptionID: sub.ID,
	})
	if !hasViolation(err, validate.MsgEmailTaken, "email") {
		t.Fatalf("expected email-taken violation, got %v", err)
	}
}

func TestUserService_DeleteCascadesCards(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")
	user := mustRegister(t, ctx, svc, sub.ID)
	card := mustCard(t, ctx, svc, user.ID, "4111111111111111")

	if err := svc.users.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := svc.users.Get(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.cards.Get(ctx, adminActor(), card.ID); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected card to be gone with its owner, got %v", err)
	}
}

func TestSubscriptionService_DeleteInUseRefused(t *testing.T) {
	ctx, svc := newTestServices(t)

	gold := mustSubscription(t, ctx, svc, "Gold")
	silver := mustSubscription(t, ctx, svc, "Silver")
	user := mustRegister(t, ctx, svc, gold.ID)

	if err := svc.subs.Delete(ctx, gold.ID); !errors.Is(err, ErrSubscriptionInUse) {
		t.Fatalf("expected ErrSubscriptionInUse, got %v", err)
	}

	// Reassigning the last subscriber frees the plan for deletion.
	if _, err := svc.users.Patch(ctx, selfActor(user), user.ID, mustFields(t, `{"subscription":"`+silver.ID+`"}`)); err != nil {
		t.Fatalf("reassign subscription: %v", err)
	}
	if err := svc.subs.Delete(ctx, gold.ID); err != nil {
		t.Fatalf("delete freed subscription: %v", err)
	}
	if _, err := svc.subs.Get(ctx, gold.ID); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("expected ErrSubscriptionNotFound, got %v", err)
	}
}

func TestSubscriptionService_Patch(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")

	updated, err := svc.subs.Patch(ctx, sub.ID, mustFields(t, `{"slogan":"All you can eat","url":"https://example.com/gold"}`))
	if err != nil {
		t.Fatalf("patch subscription: %v", err)
	}
	if updated.Slogan != "All you can eat" || updated.Name != "Gold" {
		t.Errorf("patch result wrong: %+v", updated)
	}
}

func TestCardService_ForeignCardDenied(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")
	owner := mustRegister(t, ctx, svc, sub.ID)
	intruder := mustRegister(t, ctx, svc, sub.ID)
	card := mustCard(t, ctx, svc, owner.ID, "4111111111111111")

	if _, err := svc.cards.Get(ctx, selfActor(intruder), card.ID); !errors.Is(err, ErrNotCardOwner) {
		t.Errorf("get: expected ErrNotCardOwner, got %v", err)
	}
	if _, err := svc.cards.Patch(ctx, selfActor(intruder), card.ID, mustFields(t, `{"name":"Stolen"}`)); !errors.Is(err, ErrNotCardOwner) {
		t.Errorf("patch: expected ErrNotCardOwner, got %v", err)
	}
	if err := svc.cards.Delete(ctx, selfActor(intruder), card.ID); !errors.Is(err, ErrNotCardOwner) {
		t.Errorf("delete: expected ErrNotCardOwner, got %v", err)
	}

	// The administrative tier bypasses the guard.
	if _, err := svc.cards.Get(ctx, adminActor(), card.ID); err != nil {
		t.Errorf("admin get: %v", err)
	}
}

func TestCardService_DeleteAffectsOneOwner(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")
	alice := mustRegister(t, ctx, svc, sub.ID)
	bob := mustRegister(t, ctx, svc, sub.ID)
	aliceCard := mustCard(t, ctx, svc, alice.ID, "4111111111111111")
	bobCard := mustCard(t, ctx, svc, bob.ID, "5555555555554444")

	if err := svc.cards.Delete(ctx, selfActor(alice), aliceCard.ID); err != nil {
		t.Fatalf("delete own card: %v", err)
	}

	aliceCards, err := svc.cards.ListOwn(ctx, selfActor(alice))
	if err != nil {
		t.Fatalf("list alice cards: %v", err)
	}
	if len(aliceCards) != 0 {
		t.Errorf("alice should have no cards left, got %d", len(aliceCards))
	}

	bobCards, err := svc.cards.ListOwn(ctx, selfActor(bob))
	if err != nil {
		t.Fatalf("list bob cards: %v", err)
	}
	if len(bobCards) != 1 || bobCards[0].ID != bobCard.ID {
		t.Errorf("bob's collection changed: %+v", bobCards)
	}
}

func TestCardService_LifecycleWithNumberConflict(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")
	user := mustRegister(t, ctx, svc, sub.ID)
	actor := selfActor(user)

	first := mustCard(t, ctx, svc, user.ID, "4111111111111111")
	second := mustCard(t, ctx, svc, user.ID, "5555555555554444")

	// Duplicate number on create.
	_, err := svc.cards.Create(ctx, CreateCardInput{
		Name:             "Clone",
		CreditCardType:   "Visa",
		CreditCardNumber: first.CreditCardNumber,
		CurrencyCode:     "EUR",
		Value:            1,
		OwnerID:          user.ID,
	})
	if !hasViolation(err, validate.MsgCardNumTaken, "creditCardNumber") {
		t.Fatalf("expected number-taken violation on create, got %v", err)
	}

	// Duplicate number on patch.
	_, err = svc.cards.Patch(ctx, actor, second.ID, mustFields(t, `{"creditCardNumber":"`+first.CreditCardNumber+`"}`))
	if !hasViolation(err, validate.MsgCardNumTaken, "creditCardNumber") {
		t.Fatalf("expected number-taken violation on patch, got %v", err)
	}

	// Patching a card to its own number is not a conflict.
	patched, err := svc.cards.Patch(ctx, actor, second.ID, mustFields(t, `{"name":"Travel","creditCardNumber":"`+second.CreditCardNumber+`"}`))
	if err != nil {
		t.Fatalf("patch own number: %v", err)
	}
	if patched.Name != "Travel" {
		t.Errorf("patch not applied: %+v", patched)
	}
	if patched.OwnerID != user.ID {
		t.Errorf("owner changed by patch: %q", patched.OwnerID)
	}

	if err := svc.cards.Delete(ctx, actor, second.ID); err != nil {
		t.Fatalf("delete card: %v", err)
	}
	if _, err := svc.cards.Get(ctx, actor, second.ID); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound after delete, got %v", err)
	}
}

func TestCardService_CreateForUnknownOwner(t *testing.T) {
	ctx, svc := newTestServices(t)

	_, err := svc.cards.Create(ctx, CreateCardInput{
		Name:             "Orphan",
		CreditCardType:   "Visa",
		CreditCardNumber: "4111111111111111",
		CurrencyCode:     "EUR",
		Value:            1,
		OwnerID:          "no-such-user",
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCardService_InvalidCurrencyAggregated(t *testing.T) {
	ctx, svc := newTestServices(t)

	sub := mustSubscription(t, ctx, svc, "Gold")
	user := mustRegister(t, ctx, svc, sub.ID)

	_, err := svc.cards.Create(ctx, CreateCardInput{
		CurrencyCode: "euros",
		OwnerID:      user.ID,
	})

	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !hasViolation(err, validate.MsgCurrencyFormat, "currencyCode") {
		t.Errorf("missing currency violation: %+v", ve.Violations)
	}
	if len(ve.Violations) != 4 {
		t.Errorf("expected blank-field violations alongside currency, got %+v", ve.Violations)
	}
}
