package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/memory"
	"github.com/tuluyhansozen/Lexical-sub002/internal/service"
	syncengine "github.com/tuluyhansozen/Lexical-sub002/internal/sync"
)

func TestSyncHandler_Sync(t *testing.T) {
	events := memory.NewEventStore()
	states := memory.NewWordStateStore()
	profiles := memory.NewProfileStore()
	remote := memory.NewSnapshotStore()

	engine := syncengine.NewEngine(events, states, profiles, remote, slog.Default())
	handler := NewSyncHandler(engine, slog.Default())

	reviewSvc := service.NewReviewService(events, states, profiles, nil, nil, slog.Default())
	reviewHandler := NewReviewHandler(reviewSvc, slog.Default())

	t.Run("missing_user_id_rejected", func(t *testing.T) {
		rec := postJSON(t, handler.Sync, SyncRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reconciles_local_state_to_remote", func(t *testing.T) {
		rec := postJSON(t, reviewHandler.SubmitReview, SubmitReviewRequest{
			UserID: "user-1",
			Lemma:  "ephemeral",
			Grade:  3,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = postJSON(t, handler.Sync, SyncRequest{UserID: "user-1"})
		require.Equal(t, http.StatusOK, rec.Code)

		var report syncengine.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, syncengine.OutcomeApplied, report.Outcome)
		assert.Equal(t, "user-1", report.UserID)
		assert.Equal(t, 1, report.Stats.MergedEvents)
		assert.False(t, report.Retried)
	})
}
