/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/apex/log"

	"github.com/valpere/meditranslate/internal/analysis"
	"github.com/valpere/meditranslate/internal/config"
	"github.com/valpere/meditranslate/internal/flow"
	"github.com/valpere/meditranslate/internal/validator"
)

// buildAnalyzer returns the configured analyzer. A missing Gemini API key is
// logged here once; see credentialError.
func buildAnalyzer(c *config.Config) (analysis.Analyzer, error) {
	if c.Analysis.Stub {
		log.Warn("using the offline stub analyzer, results are placeholders")
		return analysis.NewStub(), nil
	}

	gc, err := analysis.NewGeminiClient(analysis.GeminiConfig{
		APIKey:   c.Gemini.APIKey,
		Model:    c.Gemini.Model,
		Endpoint: c.Gemini.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	if credErr := gc.CheckCredential(); credErr != nil {
		log.WithError(credErr).Error("set GEMINI_API_KEY to enable report analysis")
	} else {
		log.WithField("model", gc.Model()).Info("gemini analyzer ready")
	}
	return gc, nil
}

// credentialError reports the analyzer's credential check, if it has one.
func credentialError(a analysis.Analyzer) error {
	if cc, ok := a.(interface{ CheckCredential() error }); ok {
		return cc.CheckCredential()
	}
	return nil
}

// controllerFactory builds flow controllers sharing one analyzer and, when
// enabled, one language validator.
func controllerFactory(a analysis.Analyzer, c *config.Config) func() *flow.Controller {
	opts := []flow.Option{flow.WithTimeout(c.Analysis.Timeout)}
	if c.Analysis.CheckLanguage {
		opts = append(opts, flow.WithLanguageCheck(validator.New()))
	}
	return func() *flow.Controller {
		return flow.New(a, opts...)
	}
}
