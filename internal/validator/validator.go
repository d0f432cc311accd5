// Package validator checks that translated report text is in the requested language.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/meditranslate/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

// Validator checks that a translation is written in the expected target language.
// The underlying language detector is expensive to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// Supports reports whether targetLang can be checked at all.
func (v *Validator) Supports(targetLang string) bool {
	return v.det.Supports(targetLang)
}

// IsValid returns true when translatedText appears to be written in targetLang.
//
// Short texts, texts whose language cannot be determined, and target languages
// the detector has no model for pass without error. When the detected language
// differs from targetLang the returned error names both codes.
func (v *Validator) IsValid(translatedText, targetLang string) (bool, error) {
	if targetLang == "" || !v.det.Supports(targetLang) {
		return true, nil
	}

	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return true, nil
	}

	if !strings.EqualFold(detected, targetLang) {
		return false, fmt.Errorf("expected %s but detected %s", strings.ToLower(targetLang), strings.ToLower(detected))
	}

	return true, nil
}
