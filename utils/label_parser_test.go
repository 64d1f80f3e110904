package utils

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeRawLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain code", "hap", "hap"},
		{"uppercase", "NEU", "neu"},
		{"bracketed sequence", "['hap']", "hap"},
		{"bracketed two elements", "['sad', 'ang']", "sad"},
		{"double quoted", "\"ang\"", "ang"},
		{"surrounding whitespace", "  neu  ", "neu"},
		{"brackets with inner spaces", "[ 'fru' ]", "fru"},
		{"full label", "Happy", "happy"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRawLabel(tt.raw))
		})
	}
}

func TestMapToCanonicalIdentity(t *testing.T) {
	for _, label := range EmotionLabels {
		got, known := MapToCanonical(label)
		assert.True(t, known, label)
		assert.Equal(t, label, got)
	}
}

func TestMapToCanonicalShortCodes(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"hap", "happy"},
		{"exc", "happy"},
		{"sur", "happy"},
		{"sad", "sad"},
		{"fru", "sad"},
		{"fea", "sad"},
		{"ang", "angry"},
		{"neu", "neutral"},
		{"xxx", "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, known := MapToCanonical(tt.code)
			assert.True(t, known)
			assert.Equal(t, tt.want, got)
			assert.True(t, lo.Contains(EmotionLabels, got))
		})
	}
}

func TestMapToCanonicalUnknownDefaultsToNeutral(t *testing.T) {
	for _, raw := range []string{"xyz", "", "happiness"} {
		got, known := MapToCanonical(raw)
		assert.False(t, known, raw)
		assert.Equal(t, "neutral", got)
	}
}

func TestBuildScores(t *testing.T) {
	scores := BuildScores([]float32{0.82, 0.05, 0.08, 0.05}, 0, "happy")

	assert.Len(t, scores, len(EmotionLabels))
	assert.InDelta(t, 0.82, scores["happy"], 1e-6)
	assert.InDelta(t, 0.05, scores["angry"], 1e-6)
	assert.InDelta(t, 0.08, scores["neutral"], 1e-6)
	assert.InDelta(t, 0.05, scores["sad"], 1e-6)
}

func TestBuildScoresUniformFallback(t *testing.T) {
	for _, probs := range [][]float32{nil, {}} {
		scores := BuildScores(probs, 0, "neutral")

		assert.Len(t, scores, len(EmotionLabels))
		for _, label := range EmotionLabels {
			assert.InDelta(t, 0.25, scores[label], 1e-6)
		}
	}
}

func TestBuildScoresShortVectorDefaultsToZero(t *testing.T) {
	scores := BuildScores([]float32{0.9, 0.1}, 0, "angry")

	assert.Len(t, scores, len(EmotionLabels))
	assert.InDelta(t, 0.9, scores["angry"], 1e-6)
	assert.InDelta(t, 0.1, scores["happy"], 1e-6)
	assert.Zero(t, scores["neutral"])
	assert.Zero(t, scores["sad"])
}

func TestBuildScoresValuesStayInRange(t *testing.T) {
	scores := BuildScores([]float32{0.4, 0.3, 0.2, 0.1}, 2, "neutral")

	assert.Len(t, scores, len(EmotionLabels))
	for label, score := range scores {
		assert.GreaterOrEqual(t, score, 0.0, label)
		assert.LessOrEqual(t, score, 1.0, label)
	}
	assert.InDelta(t, 0.2, scores["neutral"], 1e-6)
}
