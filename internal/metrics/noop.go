package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncUserPatched is a no-op.
func (n *NoopRecorder) IncUserPatched() {}

// IncUserDeleted is a no-op.
func (n *NoopRecorder) IncUserDeleted() {}

// IncCardCreated is a no-op.
func (n *NoopRecorder) IncCardCreated() {}

// IncCardPatched is a no-op.
func (n *NoopRecorder) IncCardPatched() {}

// IncCardDeleted is a no-op.
func (n *NoopRecorder) IncCardDeleted() {}

// IncSubscriptionCreated is a no-op.
func (n *NoopRecorder) IncSubscriptionCreated() {}

// IncSubscriptionPatched is a no-op.
func (n *NoopRecorder) IncSubscriptionPatched() {}

// IncSubscriptionDeleted is a no-op.
func (n *NoopRecorder) IncSubscriptionDeleted() {}

// IncOwnershipDenied is a no-op.
func (n *NoopRecorder) IncOwnershipDenied() {}

// IncValidationFailed is a no-op.
func (n *NoopRecorder) IncValidationFailed() {}
