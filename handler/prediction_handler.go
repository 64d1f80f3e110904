package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/affectlab/voice-emotion-recognition/dto"
	"github.com/affectlab/voice-emotion-recognition/service"
)

const (
	serviceName    = "voice-emotion-recognition"
	serviceTitle   = "Voice Emotion Recognition API"
	serviceVersion = "1.0.0"
)

type PredictionHandler struct {
	predictionService *service.PredictionService
	log               *slog.Logger
}

func NewPredictionHandler(predictionService *service.PredictionService, log *slog.Logger) *PredictionHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PredictionHandler{
		predictionService: predictionService,
		log:               log,
	}
}

// Predict handles the POST /predict endpoint
func (h *PredictionHandler) Predict(c *gin.Context) {
	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "PREDICTION_FAILED",
			fmt.Sprintf("Prediction failed: %v", err), err)
		return
	}

	response, err := h.predictionService.Predict(fileHeader)
	if err != nil {
		if errors.Is(err, dto.ErrModelNotLoaded) {
			h.sendError(c, http.StatusServiceUnavailable, "MODEL_NOT_LOADED",
				"Model not loaded. Service is initializing or failed to load model.", err)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "PREDICTION_FAILED",
			fmt.Sprintf("Prediction failed: %v", err), err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Health handles the GET /health endpoint
func (h *PredictionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:      "healthy",
		ModelLoaded: h.predictionService.ModelLoaded(),
		Service:     serviceName,
	})
}

// Root handles the GET / endpoint
func (h *PredictionHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, dto.RootResponse{
		Service: serviceTitle,
		Version: serviceVersion,
		Endpoints: map[string]string{
			"health":  "/health",
			"predict": "/predict",
			"metrics": "/metrics",
		},
		ModelLoaded: h.predictionService.ModelLoaded(),
	})
}

// sendError sends a structured error response
func (h *PredictionHandler) sendError(c *gin.Context, statusCode int, code, detail string, err error) {
	if err != nil {
		h.log.Error("request failed",
			"code", code,
			"status", statusCode,
			"error", err,
			"request_id", c.GetString(RequestIDKey))
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:  code,
		Detail: detail,
		Code:   statusCode,
	})
}
