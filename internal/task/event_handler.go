package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tuluyhansozen/Lexical-sub002/internal/events"
	"github.com/tuluyhansozen/Lexical-sub002/internal/sync"
)

// SyncEventHandler bridges the event emitter to the task runner: every
// sync request becomes a queued ReconcileTask. A full queue drops the
// trigger silently — the periodic sweep covers dropped users.
type SyncEventHandler struct {
	engine *sync.Engine
	runner *Runner
	logger *slog.Logger
}

// Ensure SyncEventHandler implements the events.Handler interface
var _ events.Handler = (*SyncEventHandler)(nil)

// NewSyncEventHandler creates a handler submitting reconcile tasks to
// the given runner. If logger is nil, a default logger will be used.
func NewSyncEventHandler(engine *sync.Engine, runner *Runner, logger *slog.Logger) *SyncEventHandler {
	if engine == nil {
		panic("sync engine cannot be nil")
	}
	if runner == nil {
		panic("task runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SyncEventHandler{
		engine: engine,
		runner: runner,
		logger: logger.With(slog.String("component", "sync_event_handler")),
	}
}

// HandleEvent implements events.Handler.HandleEvent.
func (h *SyncEventHandler) HandleEvent(ctx context.Context, event *events.SyncRequestedEvent) error {
	task, err := NewReconcileTask(event.UserID, h.engine)
	if err != nil {
		return fmt.Errorf("failed to create reconcile task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		if errors.Is(err, ErrQueueFull) {
			h.logger.Warn("dropping sync trigger, queue full",
				"user_id", event.UserID,
				"trigger", event.Trigger)
			return nil
		}
		return fmt.Errorf("failed to submit reconcile task: %w", err)
	}

	h.logger.Debug("queued reconcile task",
		"user_id", event.UserID,
		"trigger", event.Trigger)
	return nil
}
