package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tuluyhansozen/Lexical-sub002/internal/api/shared"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
	"github.com/tuluyhansozen/Lexical-sub002/internal/service"
)

// ReviewHandler handles review submission, implicit exposures, the due
// queue, and ignore-list management.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService, log *slog.Logger) *ReviewHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}

	return &ReviewHandler{
		service: reviewService,
		logger:  log.With(slog.String("component", "review_handler")),
	}
}

// SubmitReview handles POST /reviews.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode submit review request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("submit review request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	state, adjustment, err := h.service.SubmitReview(
		ctx, req.UserID, req.Lemma, domain.Grade(req.Grade), req.DurationMs, req.DeviceID,
	)
	if err != nil {
		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("user_id", req.UserID),
			slog.String("lemma", req.Lemma))
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	log.Debug("review submitted",
		slog.String("user_id", req.UserID),
		slog.String("lemma", state.Lemma),
		slog.Int("grade", req.Grade))

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitReviewResponse{
		State:      newWordStateResponse(state),
		Adjustment: adjustment,
	})
}

// SubmitExposure handles POST /exposures.
func (h *ReviewHandler) SubmitExposure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	var req SubmitExposureRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode exposure request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("exposure request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	recorded, err := h.service.SubmitImplicitExposure(ctx, req.UserID, req.Lemma, req.DeviceID)
	if err != nil {
		log.Error("failed to record exposure",
			slog.String("error", err.Error()),
			slog.String("user_id", req.UserID),
			slog.String("lemma", req.Lemma))
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitExposureResponse{Recorded: recorded})
}

// IgnoreWord handles POST /words/ignore.
func (h *ReviewHandler) IgnoreWord(w http.ResponseWriter, r *http.Request) {
	h.setIgnored(w, r, true)
}

// UnignoreWord handles POST /words/unignore.
func (h *ReviewHandler) UnignoreWord(w http.ResponseWriter, r *http.Request) {
	h.setIgnored(w, r, false)
}

func (h *ReviewHandler) setIgnored(w http.ResponseWriter, r *http.Request, ignore bool) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	var req IgnoreWordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode ignore request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("ignore request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	var err error
	if ignore {
		err = h.service.IgnoreWord(ctx, req.UserID, req.Lemma)
	} else {
		err = h.service.UnignoreWord(ctx, req.UserID, req.Lemma)
	}
	if err != nil {
		log.Error("failed to update ignore list",
			slog.String("error", err.Error()),
			slog.String("user_id", req.UserID),
			slog.String("lemma", req.Lemma),
			slog.Bool("ignore", ignore))
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DueWords handles GET /words/due?user_id=...
func (h *ReviewHandler) DueWords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	states, err := h.service.DueWords(ctx, userID, time.Now().UTC())
	if err != nil {
		log.Error("failed to list due words",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	responses := make([]WordStateResponse, 0, len(states))
	for i := range states {
		responses = append(responses, newWordStateResponse(&states[i]))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Profile handles GET /profile?user_id=...
func (h *ReviewHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	profile, err := h.service.Profile(ctx, userID)
	if err != nil {
		log.Error("failed to fetch profile",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newProfileResponse(profile))
}
