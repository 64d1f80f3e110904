package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings is the process-wide configuration snapshot. It is loaded once at
// startup and never mutated afterwards.
type Settings struct {
	ModelCacheDir  string `envconfig:"MODEL_CACHE_DIR" default:"/app/models"`
	ModelSource    string `envconfig:"MODEL_SOURCE" default:"speechbrain/emotion-recognition-wav2vec2-IEMOCAP"`
	ModelHubURL    string `envconfig:"MODEL_HUB_URL" default:"https://huggingface.co"`
	OrtLibraryPath string `envconfig:"ORT_LIBRARY_PATH"`
	MaxFileSize    int64  `envconfig:"MAX_FILE_SIZE" default:"10485760"`
	Timeout        int    `envconfig:"TIMEOUT" default:"30"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"INFO"`
	Host           string `envconfig:"HOST" default:"0.0.0.0"`
	Port           int    `envconfig:"PORT" default:"8000"`
}

// Load reads settings from the environment. An optional .env file may supply
// values for anything unset; a missing file is not an error. Environment
// variables the service does not know are ignored.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RequestTimeout returns the configured timeout as a duration. TIMEOUT is a
// plain number of seconds.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// SlogLevel maps the configured log level onto slog. Unknown values fall
// back to INFO.
func (s *Settings) SlogLevel() slog.Level {
	switch strings.ToUpper(s.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
