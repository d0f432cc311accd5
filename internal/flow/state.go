package flow

import (
	"github.com/valpere/meditranslate/internal/analysis"
	"github.com/valpere/meditranslate/internal/catalog"
	"github.com/valpere/meditranslate/internal/ingest"
)

// Kind names a flow state.
type Kind string

const (
	KindUpload         Kind = "upload"
	KindLanguageSelect Kind = "language_select"
	KindProcessing     Kind = "processing"
	KindResults        Kind = "results"
	KindError          Kind = "error"
)

// State is one of Upload, LanguageSelect, Processing, Results or Failure.
// Each variant carries exactly the payload it needs.
type State interface {
	Kind() Kind
	isState()
}

// Upload is the initial state: nothing selected.
type Upload struct{}

// LanguageSelect holds a validated file waiting for a target language.
type LanguageSelect struct {
	File ingest.EncodedFile
}

// Processing holds the file and language of the running analysis.
type Processing struct {
	File     ingest.EncodedFile
	Language catalog.Language
}

// Results holds a completed analysis.
type Results struct {
	Result analysis.Result
}

// Failure holds the message shown after a failed analysis.
type Failure struct {
	Message string
	Err     error
}

func (Upload) Kind() Kind         { return KindUpload }
func (LanguageSelect) Kind() Kind { return KindLanguageSelect }
func (Processing) Kind() Kind     { return KindProcessing }
func (Results) Kind() Kind        { return KindResults }
func (Failure) Kind() Kind        { return KindError }

func (Upload) isState()         {}
func (LanguageSelect) isState() {}
func (Processing) isState()     {}
func (Results) isState()        {}
func (Failure) isState()        {}
