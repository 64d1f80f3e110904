package dto

import "errors"

// Sentinel errors surfaced by the prediction pipeline.
var (
	ErrModelNotLoaded = errors.New("model not loaded")
)

// ErrorResponse is the body returned for every failed request.
// Detail carries the human-readable message checked by clients.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
	Code   int    `json:"code"`
}

// PredictionResponse is the output contract of POST /predict.
// Scores always holds exactly the four canonical emotion labels.
type PredictionResponse struct {
	Emotion    string             `json:"emotion"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Service     string `json:"service"`
}

// RootResponse is returned by GET /.
type RootResponse struct {
	Service     string            `json:"service"`
	Version     string            `json:"version"`
	Endpoints   map[string]string `json:"endpoints"`
	ModelLoaded bool              `json:"model_loaded"`
}
