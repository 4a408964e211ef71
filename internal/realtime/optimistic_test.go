package realtime

import (
	"context"
	"errors"
	"testing"

	"tableside/internal/domain"
)

type boardState struct {
	Status  domain.Status
	Column  int
	Version int
}

func TestOptimisticCommitKeepsAppliedState(t *testing.T) {
	state := boardState{Status: domain.StatusPending, Column: 0, Version: 7}
	cmd := Optimistic[boardState]{
		Snapshot: func() boardState { return state },
		Apply: func() {
			state.Status = domain.StatusPreparing
			state.Column = 1
			state.Version++
		},
		Commit:  func(context.Context) error { return nil },
		Restore: func(s boardState) { state = s },
	}

	if err := cmd.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if state.Status != domain.StatusPreparing || state.Column != 1 || state.Version != 8 {
		t.Fatalf("applied state lost: %+v", state)
	}
}

func TestOptimisticFailureRestoresWholeSnapshot(t *testing.T) {
	state := boardState{Status: domain.StatusPending, Column: 0, Version: 7}
	commitErr := errors.New("store rejected transition")
	cmd := Optimistic[boardState]{
		Snapshot: func() boardState { return state },
		Apply: func() {
			// Mutates more than one field; rollback must undo all of them.
			state.Status = domain.StatusPreparing
			state.Column = 1
			state.Version++
		},
		Commit:  func(context.Context) error { return commitErr },
		Restore: func(s boardState) { state = s },
	}

	err := cmd.Run(context.Background())
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}
	want := boardState{Status: domain.StatusPending, Column: 0, Version: 7}
	if state != want {
		t.Fatalf("partial rollback: %+v, want %+v", state, want)
	}
}
