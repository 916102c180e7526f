package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered      uint64
	UsersPatched         uint64
	UsersDeleted         uint64
	CardsCreated         uint64
	CardsPatched         uint64
	CardsDeleted         uint64
	SubscriptionsCreated uint64
	SubscriptionsPatched uint64
	SubscriptionsDeleted uint64
	OwnershipDenials     uint64
	ValidationFailures   uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered      uint64
	usersPatched         uint64
	usersDeleted         uint64
	cardsCreated         uint64
	cardsPatched         uint64
	cardsDeleted         uint64
	subscriptionsCreated uint64
	subscriptionsPatched uint64
	subscriptionsDeleted uint64
	ownershipDenials     uint64
	validationFailures   uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:      atomic.LoadUint64(&m.usersRegistered),
		UsersPatched:         atomic.LoadUint64(&m.usersPatched),
		UsersDeleted:         atomic.LoadUint64(&m.usersDeleted),
		CardsCreated:         atomic.LoadUint64(&m.cardsCreated),
		CardsPatched:         atomic.LoadUint64(&m.cardsPatched),
		CardsDeleted:         atomic.LoadUint64(&m.cardsDeleted),
		SubscriptionsCreated: atomic.LoadUint64(&m.subscriptionsCreated),
		SubscriptionsPatched: atomic.LoadUint64(&m.subscriptionsPatched),
		SubscriptionsDeleted: atomic.LoadUint64(&m.subscriptionsDeleted),
		OwnershipDenials:     atomic.LoadUint64(&m.ownershipDenials),
		ValidationFailures:   atomic.LoadUint64(&m.validationFailures),
	}
}

// IncUserRegistered increments the user registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncUserPatched increments the user patch counter.
func (m *InMemoryRecorder) IncUserPatched() {
	atomic.AddUint64(&m.usersPatched, 1)
}

// IncUserDeleted increments the user delete counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncCardCreated increments the card created counter.
func (m *InMemoryRecorder) IncCardCreated() {
	atomic.AddUint64(&m.cardsCreated, 1)
}

// IncCardPatched increments the card patch counter.
func (m *InMemoryRecorder) IncCardPatched() {
	atomic.AddUint64(&m.cardsPatched, 1)
}

// IncCardDeleted increments the card delete counter.
func (m *InMemoryRecorder) IncCardDeleted() {
	atomic.AddUint64(&m.cardsDeleted, 1)
}

// IncSubscriptionCreated increments the subscription created counter.
func (m *InMemoryRecorder) IncSubscriptionCreated() {
	atomic.AddUint64(&m.subscriptionsCreated, 1)
}

// IncSubscriptionPatched increments the subscription patch counter.
func (m *InMemoryRecorder) IncSubscriptionPatched() {
	atomic.AddUint64(&m.subscriptionsPatched, 1)
}

// IncSubscriptionDeleted increments the subscription delete counter.
func (m *InMemoryRecorder) IncSubscriptionDeleted() {
	atomic.AddUint64(&m.subscriptionsDeleted, 1)
}

// IncOwnershipDenied increments the ownership denial counter.
func (m *InMemoryRecorder) IncOwnershipDenied() {
	atomic.AddUint64(&m.ownershipDenials, 1)
}

// IncValidationFailed increments the validation failure counter.
func (m *InMemoryRecorder) IncValidationFailed() {
	atomic.AddUint64(&m.validationFailures, 1)
}
