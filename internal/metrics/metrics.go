// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// User lifecycle metrics
	IncUserRegistered()
	IncUserPatched()
	IncUserDeleted()

	// Card lifecycle metrics
	IncCardCreated()
	IncCardPatched()
	IncCardDeleted()

	// Subscription lifecycle metrics
	IncSubscriptionCreated()
	IncSubscriptionPatched()
	IncSubscriptionDeleted()

	// Guard metrics
	IncOwnershipDenied()
	IncValidationFailed()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
