package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// Languages is the set the detector chooses from: English (an untranslated
// answer) and the Indian languages lingua has models for.
var Languages = []lingua.Language{
	lingua.English,
	lingua.Hindi,
	lingua.Bengali,
	lingua.Telugu,
	lingua.Marathi,
	lingua.Tamil,
	lingua.Urdu,
	lingua.Gujarati,
	lingua.Punjabi,
}

type Detector struct {
	detector  lingua.LanguageDetector
	languages []lingua.Language
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(Languages...).
		Build()

	return &Detector{detector: detector, languages: Languages}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

// Supports reports whether iso (ISO 639-1, any case) can be detected.
func (d *Detector) Supports(iso string) bool {
	for _, l := range d.languages {
		if strings.EqualFold(l.IsoCode639_1().String(), iso) {
			return true
		}
	}
	return false
}
