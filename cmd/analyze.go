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
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valpere/meditranslate/internal/catalog"
	"github.com/valpere/meditranslate/internal/flow"
	"github.com/valpere/meditranslate/internal/ingest"
	"github.com/valpere/meditranslate/internal/markdown"
)

var (
	inputFile    string
	outputFile   string
	targetLang   string
	outputFormat string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a medical report from the command line",
	Long: `Validate a PDF report, send it to Gemini once and write the translation,
summary and lifestyle advice in the chosen language.

Output formats:
  md    Markdown (default)
  html  HTML fragment
  text  plain text

Use "meditranslate languages" to list the language codes.`,
	Example: "  meditranslate analyze -i report.pdf -l hi -o report.hi.md",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputFile != "" && filepath.Clean(inputFile) == filepath.Clean(outputFile) {
			return fmt.Errorf("input file and output file cannot be the same")
		}
		render, ok := renderers[outputFormat]
		if !ok {
			return fmt.Errorf("unknown output format %q (want md, html or text)", outputFormat)
		}
		lang, ok := catalog.Lookup(targetLang)
		if !ok {
			return fmt.Errorf("unsupported language %q, see \"meditranslate languages\"", targetLang)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		analyzer, err := buildAnalyzer(cfg)
		if err != nil {
			return err
		}
		if err := credentialError(analyzer); err != nil {
			return err
		}

		src, err := ingest.FromPath(inputFile)
		if err != nil {
			return fmt.Errorf("%s: %w", ingest.Message(err), err)
		}
		file, err := ingest.Validate(src)
		if err != nil {
			return fmt.Errorf("%s: %w", ingest.Message(err), err)
		}

		ctrl := controllerFactory(analyzer, cfg)()
		if err := ctrl.FileSelected(file); err != nil {
			return err
		}
		if err := ctrl.LanguageChosen(ctx, lang); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Analyzing %s (%s) in %s...\n", file.Name, formatSize(file.Size), lang.Name)

		st, err := ctrl.Wait(ctx)
		if err != nil {
			return fmt.Errorf("interrupted while waiting for the analysis: %w", err)
		}

		switch s := st.(type) {
		case flow.Results:
			out := render(s.Result.Markdown())
			if outputFile == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %s report to %s\n", lang.Name, outputFile)
			return nil
		case flow.Failure:
			return fmt.Errorf("analysis failed: %w", s.Err)
		default:
			return fmt.Errorf("unexpected state %s", st.Kind())
		}
	},
}

var renderers = map[string]func(string) string{
	"md":   func(md string) string { return md },
	"html": func(md string) string { return markdown.ToHTML([]byte(md)) },
	"text": func(md string) string { return markdown.ToPlainText([]byte(md)) + "\n" },
}

func formatSize(n int64) string {
	if n < 1<<20 {
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "PDF report to analyze (required)")
	analyzeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default stdout)")
	analyzeCmd.Flags().StringVarP(&targetLang, "language", "l", "", "Target language code, e.g. hi (required)")
	analyzeCmd.Flags().StringVarP(&outputFormat, "format", "f", "md", "Output format (md, html, text)")

	analyzeCmd.MarkFlagRequired("input")
	analyzeCmd.MarkFlagRequired("language")
}
