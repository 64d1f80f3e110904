package utils

import (
	"strings"

	"github.com/samber/lo"
)

// EmotionLabels is the canonical output vocabulary. Order matters: it is the
// fixed key order of the scores map in every response.
var EmotionLabels = []string{"angry", "happy", "neutral", "sad"}

// shortCodeMap translates the model's native IEMOCAP 3-letter codes to
// canonical labels. Codes without a canonical counterpart are folded into the
// nearest one (excited/surprised read as happy, frustrated/fearful as sad).
var shortCodeMap = map[string]string{
	"hap": "happy",
	"sad": "sad",
	"ang": "angry",
	"neu": "neutral",
	"exc": "happy",
	"fru": "sad",
	"fea": "sad",
	"sur": "happy",
	"xxx": "neutral",
}

// NormalizeRawLabel reduces a raw classifier label to plain lowercase text.
// Depending on how the model vocabulary was exported the label arrives as
// plain text ("hap"), a bracketed sequence rendering ("['hap']"), or quoted
// text. Sequence renderings are reduced to their first element.
func NormalizeRawLabel(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "[]'\"")
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(strings.TrimSpace(s), "[]'\"")
	return strings.ToLower(s)
}

// MapToCanonical translates a normalized raw label into the canonical
// vocabulary: verbatim canonical labels pass through, known short codes are
// translated, anything else falls back to neutral. The second return value
// reports whether the label was recognized, so callers can surface the
// fallback instead of substituting silently.
func MapToCanonical(normalized string) (string, bool) {
	if lo.Contains(EmotionLabels, normalized) {
		return normalized, true
	}
	if mapped, ok := shortCodeMap[normalized]; ok {
		return mapped, true
	}
	return "neutral", false
}

// BuildScores assembles the fixed four-key score map from the raw vector.
// The predicted label keeps the score at its own vector position; the
// remaining canonical labels take the remaining positions in canonical order.
// Labels beyond the vector's length stay at 0.0. An empty or missing vector
// yields a uniform distribution instead of failing the request.
func BuildScores(probs []float32, topIndex int, emotion string) map[string]float64 {
	scores := make(map[string]float64, len(EmotionLabels))

	if len(probs) == 0 {
		uniform := 1.0 / float64(len(EmotionLabels))
		for _, label := range EmotionLabels {
			scores[label] = uniform
		}
		return scores
	}

	for _, label := range EmotionLabels {
		scores[label] = 0.0
	}
	if topIndex >= 0 && topIndex < len(probs) {
		scores[emotion] = float64(probs[topIndex])
	}

	pos := 0
	for _, label := range EmotionLabels {
		if label == emotion {
			continue
		}
		if pos == topIndex {
			pos++
		}
		if pos >= len(probs) {
			break
		}
		scores[label] = float64(probs[pos])
		pos++
	}

	return scores
}
