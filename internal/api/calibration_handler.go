package api

import (
	"log/slog"
	"net/http"

	"github.com/tuluyhansozen/Lexical-sub002/internal/api/shared"
	"github.com/tuluyhansozen/Lexical-sub002/internal/domain/calibration"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
	"github.com/tuluyhansozen/Lexical-sub002/internal/service"
)

// CalibrationHandler handles vocabulary calibration submissions.
type CalibrationHandler struct {
	service *service.CalibrationService
	logger  *slog.Logger
}

// NewCalibrationHandler creates a new CalibrationHandler.
func NewCalibrationHandler(calibrationService *service.CalibrationService, log *slog.Logger) *CalibrationHandler {
	if calibrationService == nil {
		panic("calibrationService cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}

	return &CalibrationHandler{
		service: calibrationService,
		logger:  log.With(slog.String("component", "calibration_handler")),
	}
}

// Calibrate handles POST /calibration. It estimates the learner's
// vocabulary rank from a batch of recognition responses and persists it
// on the profile.
func (h *CalibrationHandler) Calibrate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	var req CalibrateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode calibration request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("calibration request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	responses := make([]calibration.Response, 0, len(req.Responses))
	for _, item := range req.Responses {
		responses = append(responses, calibration.Response{
			ItemRank:   item.ItemRank,
			Recognized: item.Recognized,
			Control:    item.Control,
		})
	}

	result, err := h.service.Calibrate(ctx, req.UserID, responses)
	if err != nil {
		log.Error("failed to calibrate user",
			slog.String("error", err.Error()),
			slog.String("user_id", req.UserID),
			slog.Int("response_count", len(responses)))
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	log.Info("calibration completed",
		slog.String("user_id", req.UserID),
		slog.Int("estimated_rank", result.EstimatedRank),
		slog.Float64("confidence", result.Confidence))

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
