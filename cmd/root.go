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
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/valpere/meditranslate/internal/config"
)

var version = "0.1.0"

var (
	cfgFile string
	envFile string

	v   = config.New()
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "meditranslate",
	Short: "Medical report translator for Indian languages",
	Long: `Upload a medical report (PDF), choose an Indian language and get a
translation, a plain-language summary and general lifestyle advice, produced
by a single Gemini analysis.

Use "meditranslate serve" to start the web application and
"meditranslate analyze --help" to analyze a report from the command line.

The Gemini API key is read from GEMINI_API_KEY (or API_KEY).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		if err := config.ReadFile(v, cfgFile); err != nil {
			return err
		}
		c, err := config.Load(v)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = c
		setupLogging(cfg.Log)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(lc config.LogConfig) {
	switch lc.Format {
	case "json":
		log.SetHandler(json.New(os.Stderr))
	case "text":
		log.SetHandler(text.New(os.Stderr))
	default:
		log.SetHandler(cli.New(os.Stderr))
	}
	log.SetLevel(log.MustParseLevel(lc.Level))
}

// bindFlag ties a command flag to a configuration key.
func bindFlag(flags *pflag.FlagSet, key, flag string) {
	if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File with environment variables to load if present")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "cli", "Log format (cli, json, text)")
	rootCmd.PersistentFlags().String("model", "", "Gemini model (default gemini-2.5-flash)")
	rootCmd.PersistentFlags().Bool("stub", false, "Use the offline stub analyzer instead of Gemini")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Analysis timeout (0 = none)")

	bindFlag(rootCmd.PersistentFlags(), config.KeyLogLevel, "log-level")
	bindFlag(rootCmd.PersistentFlags(), config.KeyLogFormat, "log-format")
	bindFlag(rootCmd.PersistentFlags(), config.KeyGeminiModel, "model")
	bindFlag(rootCmd.PersistentFlags(), config.KeyAnalysisStub, "stub")
	bindFlag(rootCmd.PersistentFlags(), config.KeyAnalysisTimeout, "timeout")
}
