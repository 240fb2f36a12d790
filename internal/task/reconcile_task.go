package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuluyhansozen/Lexical-sub002/internal/sync"
)

// ReconcileTask runs one reconciliation pass for one user. Submitting
// several for the same user is harmless: the sync engine's in-flight
// guard turns the extras into no-ops.
type ReconcileTask struct {
	id     uuid.UUID
	userID string
	engine *sync.Engine
}

// Ensure ReconcileTask implements the Task interface
var _ Task = (*ReconcileTask)(nil)

// NewReconcileTask creates a reconciliation task for the given user.
func NewReconcileTask(userID string, engine *sync.Engine) (*ReconcileTask, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}
	if engine == nil {
		return nil, fmt.Errorf("sync engine cannot be nil")
	}

	return &ReconcileTask{
		id:     uuid.New(),
		userID: userID,
		engine: engine,
	}, nil
}

// ID implements Task.ID.
func (t *ReconcileTask) ID() uuid.UUID {
	return t.id
}

// Type implements Task.Type.
func (t *ReconcileTask) Type() string {
	return TypeReconcile
}

// Execute implements Task.Execute. A sync_skipped outcome is not an
// execution error: the pass ran and deliberately declined the remote
// exchange.
func (t *ReconcileTask) Execute(ctx context.Context) error {
	_, err := t.engine.Reconcile(ctx, t.userID)
	if err != nil {
		return fmt.Errorf("reconciliation failed for user %s: %w", t.userID, err)
	}
	return nil
}
