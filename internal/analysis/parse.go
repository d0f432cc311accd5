package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/valpere/meditranslate/internal/postprocess"
)

type rawFindings struct {
	Summary        *string `json:"summary"`
	MedicalAdvice  *string `json:"medicalAdvice"`
	TranslatedText *string `json:"translatedText"`
}

// ParseFindings decodes the service's text answer. Field values are kept
// exactly as sent. Unknown fields are ignored; an absent or null required
// field is an error, an empty string is not.
//
// The body is decoded as-is first. Only when that fails is the embedded
// object extracted from surrounding fences or reasoning text and retried.
func ParseFindings(text string) (*Findings, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	var raw rawFindings
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		raw = rawFindings{}
		if err2 := json.Unmarshal([]byte(postprocess.ExtractJSON(text)), &raw); err2 != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	var missing []string
	f := &Findings{}
	for _, field := range []struct {
		name string
		src  *string
		dst  *string
	}{
		{"summary", raw.Summary, &f.Summary},
		{"medicalAdvice", raw.MedicalAdvice, &f.MedicalAdvice},
		{"translatedText", raw.TranslatedText, &f.TranslatedText},
	} {
		if field.src == nil {
			missing = append(missing, field.name)
			continue
		}
		*field.dst = *field.src
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}
	return f, nil
}
