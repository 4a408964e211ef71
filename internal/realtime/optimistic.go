package realtime

import "context"

// Optimistic runs the snapshot / apply-locally / attempt-remote / restore
// cycle used by POS status transitions: the local view updates immediately,
// the authoritative write follows, and a failed write restores the exact
// prior snapshot rather than patching individual fields.
type Optimistic[S any] struct {
	// Snapshot captures the complete local state before mutation.
	Snapshot func() S
	// Apply mutates the local state to the desired result.
	Apply func()
	// Commit performs the authoritative write.
	Commit func(ctx context.Context) error
	// Restore replaces the local state with a previously taken snapshot.
	Restore func(S)
}

// Run executes the cycle. On commit failure the prior snapshot is restored
// and the error returned; partial rollback is never possible because Restore
// receives the whole snapshot.
func (o Optimistic[S]) Run(ctx context.Context) error {
	before := o.Snapshot()
	o.Apply()
	if err := o.Commit(ctx); err != nil {
		o.Restore(before)
		return err
	}
	return nil
}
