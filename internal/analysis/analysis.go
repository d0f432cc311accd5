// Package analysis sends an encoded medical report to a generative AI
// service and maps its structured answer into a Result.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/meditranslate/internal/ingest"
)

var (
	ErrMissingCredential  = errors.New("analysis service API key is not configured")
	ErrServiceUnavailable = errors.New("analysis service request failed")
	ErrEmptyResponse      = errors.New("no response received from analysis service")
	ErrMalformedResponse  = errors.New("analysis service returned a malformed response")
)

// Analyzer performs one analysis of a report. Implementations make exactly
// one attempt per call.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, file ingest.EncodedFile, languageName string) (*Findings, error)
}

// Findings is the three-field object the service is asked to return.
type Findings struct {
	Summary        string `json:"summary"`
	MedicalAdvice  string `json:"medicalAdvice"`
	TranslatedText string `json:"translatedText"`
}

// Result is a completed analysis as presented to the user.
type Result struct {
	Summary            string `json:"summary"`
	MedicalAdvice      string `json:"medicalAdvice"`
	TranslatedText     string `json:"translatedText"`
	OriginalFileName   string `json:"originalFileName"`
	TargetLanguageName string `json:"targetLanguageName"`
}

// NewResult attaches the file and language names to f.
func NewResult(f Findings, fileName, languageName string) Result {
	return Result{
		Summary:            f.Summary,
		MedicalAdvice:      f.MedicalAdvice,
		TranslatedText:     f.TranslatedText,
		OriginalFileName:   fileName,
		TargetLanguageName: languageName,
	}
}

// Markdown renders the result as a standalone Markdown document.
func (r Result) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.OriginalFileName)
	fmt.Fprintf(&sb, "_Translated to %s_\n\n", r.TargetLanguageName)
	sb.WriteString("## Summary\n\n")
	sb.WriteString(strings.TrimSpace(r.Summary))
	sb.WriteString("\n\n## Lifestyle advice\n\n")
	sb.WriteString(strings.TrimSpace(r.MedicalAdvice))
	sb.WriteString("\n\n## Translated report\n\n")
	sb.WriteString(strings.TrimSpace(r.TranslatedText))
	sb.WriteString("\n\n---\n\n")
	sb.WriteString("_AI-generated content. Not a substitute for professional medical advice._\n")
	return sb.String()
}

// Code returns a short stable label for an analysis error, used in metrics
// and API responses.
func Code(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrServiceUnavailable):
		return "service_unavailable"
	default:
		return "unknown"
	}
}
