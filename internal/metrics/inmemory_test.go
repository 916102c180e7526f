package metrics

import (
	"sync"
	"testing"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	rec := NewInMemory()

	rec.IncUserRegistered()
	rec.IncUserRegistered()
	rec.IncCardCreated()
	rec.IncOwnershipDenied()

	snap := rec.Snapshot()
	if snap.UsersRegistered != 2 {
		t.Errorf("UsersRegistered = %d, want 2", snap.UsersRegistered)
	}
	if snap.CardsCreated != 1 {
		t.Errorf("CardsCreated = %d, want 1", snap.CardsCreated)
	}
	if snap.OwnershipDenials != 1 {
		t.Errorf("OwnershipDenials = %d, want 1", snap.OwnershipDenials)
	}
	if snap.ValidationFailures != 0 {
		t.Errorf("ValidationFailures = %d, want 0", snap.ValidationFailures)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	rec := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.IncCardDeleted()
		}()
	}
	wg.Wait()

	if snap := rec.Snapshot(); snap.CardsDeleted != 50 {
		t.Errorf("CardsDeleted = %d, want 50", snap.CardsDeleted)
	}
}
