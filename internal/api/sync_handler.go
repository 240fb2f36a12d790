package api

import (
	"log/slog"
	"net/http"

	"github.com/tuluyhansozen/Lexical-sub002/internal/api/shared"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
	syncengine "github.com/tuluyhansozen/Lexical-sub002/internal/sync"
)

// SyncHandler exposes a manual reconciliation trigger. Background
// reconciliation runs through the task runner; this endpoint serves
// explicit "sync now" requests and returns the reconciliation report.
type SyncHandler struct {
	engine *syncengine.Engine
	logger *slog.Logger
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(engine *syncengine.Engine, log *slog.Logger) *SyncHandler {
	if engine == nil {
		panic("engine cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}

	return &SyncHandler{
		engine: engine,
		logger: log.With(slog.String("component", "sync_handler")),
	}
}

// Sync handles POST /sync.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	var req SyncRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode sync request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("sync request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	report, err := h.engine.Reconcile(ctx, req.UserID)
	if err != nil {
		log.Error("reconciliation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", req.UserID))
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	log.Info("reconciliation finished",
		slog.String("user_id", req.UserID),
		slog.String("outcome", string(report.Outcome)),
		slog.Int("merged_events", report.Stats.MergedEvents))

	shared.RespondWithJSON(w, r, http.StatusOK, report)
}
