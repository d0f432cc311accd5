package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/valpere/meditranslate/internal/ingest"
)

// Stub is a deterministic, no-network analyzer for local development and
// end-to-end tests. Its output depends only on the decoded file bytes, the
// file name and the language.
type Stub struct{}

func NewStub() *Stub { return &Stub{} }

func (s *Stub) Name() string { return "stub" }

func (s *Stub) Analyze(ctx context.Context, file ingest.EncodedFile, languageName string) (*Findings, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	data, err := file.Decode()
	if err != nil {
		return nil, fmt.Errorf("stub: undecodable report content: %w", err)
	}
	sum := sha256.Sum256(data)
	short := hex.EncodeToString(sum[:6])

	return &Findings{
		Summary:        fmt.Sprintf("[%s] Stub summary of %s (%s).", languageName, file.Name, short),
		MedicalAdvice:  fmt.Sprintf("[%s] Stay hydrated, sleep well and review the report with your doctor.", languageName),
		TranslatedText: fmt.Sprintf("[%s] Stub translation of %d bytes.", languageName, len(data)),
	}, nil
}
