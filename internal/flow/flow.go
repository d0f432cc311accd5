// Package flow drives one report through upload, language selection and
// analysis to a result or an error.
package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/valpere/meditranslate/internal/analysis"
	"github.com/valpere/meditranslate/internal/catalog"
	"github.com/valpere/meditranslate/internal/ingest"
	"github.com/valpere/meditranslate/internal/metrics"
)

var ErrInvalidTransition = errors.New("action is not allowed in the current state")

const defaultFailureMessage = "An unexpected error occurred during analysis."

// LanguageChecker reports whether text is written in the language with the
// given ISO 639-1 code. Supports is asked first; IsValid is only called for
// languages the checker has a model for.
type LanguageChecker interface {
	Supports(lang string) bool
	IsValid(text, lang string) (bool, error)
}

type Option func(*Controller)

// WithLogger sets the logger used for transitions. Defaults to log.Log.
func WithLogger(l log.Interface) Option {
	return func(c *Controller) { c.logger = l }
}

// WithLanguageCheck verifies translated text after a successful analysis.
// A mismatch is logged and counted; the outcome is unchanged.
func WithLanguageCheck(lc LanguageChecker) Option {
	return func(c *Controller) { c.checker = lc }
}

// WithTimeout bounds each analysis. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// Controller is safe for concurrent use. At most one analysis is in flight.
type Controller struct {
	analyzer analysis.Analyzer
	checker  LanguageChecker
	timeout  time.Duration
	logger   log.Interface

	mu      sync.Mutex
	state   State
	settled chan struct{}
}

func New(a analysis.Analyzer, opts ...Option) *Controller {
	c := &Controller{
		analyzer: a,
		logger:   log.Log,
		state:    Upload{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FileSelected moves Upload to LanguageSelect.
func (c *Controller) FileSelected(f ingest.EncodedFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.state.(Upload); !ok {
		return c.invalid("file_selected")
	}
	c.transition(LanguageSelect{File: f})
	return nil
}

// Back moves LanguageSelect to Upload, discarding the file.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.state.(LanguageSelect); !ok {
		return c.invalid("back")
	}
	c.transition(Upload{})
	return nil
}

// Reset moves Results or Error to Upload. It is a no-op in Upload.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.(type) {
	case Upload:
		return nil
	case Results, Failure:
		c.transition(Upload{})
		return nil
	default:
		return c.invalid("reset")
	}
}

// LanguageChosen moves LanguageSelect to Processing and starts the analysis.
// The analysis outlives ctx's cancellation; only its values are kept.
func (c *Controller) LanguageChosen(ctx context.Context, lang catalog.Language) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sel, ok := c.state.(LanguageSelect)
	if !ok {
		return c.invalid("language_chosen")
	}

	c.settled = make(chan struct{})
	c.transition(Processing{File: sel.File, Language: lang})

	go c.run(context.WithoutCancel(ctx), sel.File, lang, c.settled)
	return nil
}

// Wait blocks until the controller is not processing and returns the state.
func (c *Controller) Wait(ctx context.Context) (State, error) {
	c.mu.Lock()
	settled := c.settled
	c.mu.Unlock()

	if settled != nil {
		select {
		case <-settled:
		case <-ctx.Done():
			return c.State(), ctx.Err()
		}
	}
	return c.State(), nil
}

func (c *Controller) run(ctx context.Context, file ingest.EncodedFile, lang catalog.Language, settled chan struct{}) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	metrics.AnalysisInFlight.Inc()
	start := time.Now()
	findings, err := c.analyze(ctx, file, lang)
	metrics.AnalysisInFlight.Dec()

	code := analysis.Code(err)
	metrics.AnalysisTotal.WithLabelValues(code).Inc()
	metrics.AnalysisDurationSeconds.WithLabelValues(code).Observe(time.Since(start).Seconds())

	var next State
	if err != nil {
		next = Failure{Message: failureMessage(err), Err: err}
	} else {
		c.checkLanguage(findings.TranslatedText, lang)
		next = Results{Result: analysis.NewResult(*findings, file.Name, lang.Name)}
	}

	c.mu.Lock()
	c.transition(next)
	c.settled = nil
	c.mu.Unlock()
	close(settled)
}

func (c *Controller) analyze(ctx context.Context, file ingest.EncodedFile, lang catalog.Language) (f *analysis.Findings, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, fmt.Errorf("analyzer %s panicked: %v", c.analyzer.Name(), r)
		}
	}()
	f, err = c.analyzer.Analyze(ctx, file, lang.Name)
	if err == nil && f == nil {
		err = analysis.ErrEmptyResponse
	}
	return f, err
}

func (c *Controller) checkLanguage(text string, lang catalog.Language) {
	if c.checker == nil {
		return
	}
	if !c.checker.Supports(lang.Code) {
		c.logger.WithField("language", lang.Code).Debug("no detector model for language, skipping check")
		return
	}
	if ok, err := c.checker.IsValid(text, lang.Code); !ok {
		metrics.LanguageMismatchTotal.WithLabelValues(lang.Code).Inc()
		c.logger.WithFields(log.Fields{
			"language": lang.Code,
		}).WithError(err).Warn("translated text does not match the requested language")
	}
}

// transition must be called with mu held.
func (c *Controller) transition(next State) {
	fields := log.Fields{
		"from": string(c.state.Kind()),
		"to":   string(next.Kind()),
	}
	switch s := next.(type) {
	case LanguageSelect:
		fields["file"] = s.File.Name
		fields["size"] = s.File.Size
	case Processing:
		fields["language"] = s.Language.Code
	case Failure:
		fields["error"] = s.Message
	}
	c.state = next
	c.logger.WithFields(fields).Info("flow transition")
}

// invalid must be called with mu held.
func (c *Controller) invalid(action string) error {
	c.logger.WithFields(log.Fields{
		"action": action,
		"state":  string(c.state.Kind()),
	}).Debug("rejected flow action")
	return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, action, c.state.Kind())
}

func failureMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return defaultFailureMessage
}
