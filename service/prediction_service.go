package service

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/affectlab/voice-emotion-recognition/client"
	"github.com/affectlab/voice-emotion-recognition/dto"
	"github.com/affectlab/voice-emotion-recognition/utils"
)

// FileClassifier is the part of the model client the prediction flow uses.
type FileClassifier interface {
	ClassifyFile(path string) (*client.Classification, error)
}

var _ FileClassifier = (*client.Wav2VecClient)(nil)

// PredictionService turns an uploaded recording into a canonical emotion
// result. The classifier may be nil when the model failed to load at
// startup; Predict then refuses with dto.ErrModelNotLoaded so the handler
// can answer 503.
type PredictionService struct {
	classifier FileClassifier
	log        *slog.Logger
}

func NewPredictionService(classifier FileClassifier, log *slog.Logger) *PredictionService {
	if log == nil {
		log = slog.Default()
	}
	return &PredictionService{
		classifier: classifier,
		log:        log,
	}
}

// ModelLoaded reports whether a classifier is available for predictions.
func (s *PredictionService) ModelLoaded() bool {
	return s.classifier != nil
}

// Predict stages the upload as a temporary WAV file, runs the classifier
// against it and normalizes the raw result into the canonical emotion
// vocabulary. The temporary file is removed no matter how the call ends.
func (s *PredictionService) Predict(fileHeader *multipart.FileHeader) (*dto.PredictionResponse, error) {
	if s.classifier == nil {
		return nil, dto.ErrModelNotLoaded
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if kind := mimetype.Detect(data); !strings.HasPrefix(kind.String(), "audio/") {
		s.log.Warn("upload does not look like audio",
			"filename", fileHeader.Filename,
			"detected", kind.String())
	}

	tmp, err := os.CreateTemp("", "emotion-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp audio file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove temp audio file", "path", tmpPath, "error", err)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp audio file: %w", err)
	}

	result, err := s.classifier.ClassifyFile(tmpPath)
	if err != nil {
		return nil, err
	}

	normalized := utils.NormalizeRawLabel(result.Label)
	emotion, known := utils.MapToCanonical(normalized)
	if !known {
		s.log.Warn("classifier returned an unrecognized label, defaulting to neutral",
			"filename", fileHeader.Filename,
			"label", result.Label)
	}

	if len(result.Probs) == 0 {
		s.log.Warn("classifier returned no scores, using uniform distribution",
			"filename", fileHeader.Filename)
	}
	scores := utils.BuildScores(result.Probs, result.Index, emotion)

	s.log.Info("prediction complete",
		"filename", fileHeader.Filename,
		"emotion", emotion,
		"confidence", result.Score)

	return &dto.PredictionResponse{
		Emotion:    emotion,
		Confidence: float64(result.Score),
		Scores:     scores,
	}, nil
}
