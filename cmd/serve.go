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
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/valpere/meditranslate/internal/config"
	"github.com/valpere/meditranslate/internal/server"
	"github.com/valpere/meditranslate/internal/session"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web application",
	Long: `Start the HTTP server: HTML pages at / and a JSON API under /api.

Endpoints:
  GET  /                          upload, language choice and results pages
  GET  /api/languages             supported languages
  POST /api/sessions              start a session
  GET  /api/sessions/:id          session state (?wait=30s to wait for results)
  POST /api/sessions/:id/file     upload a PDF (multipart "file" or JSON data URL)
  POST /api/sessions/:id/language start the analysis: {"code": "hi"}
  POST /api/sessions/:id/back     return to upload
  POST /api/sessions/:id/reset    start over
  GET  /health, /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Log.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		analyzer, err := buildAnalyzer(cfg)
		if err != nil {
			return err
		}

		sessions := session.NewStore(controllerFactory(analyzer, cfg), cfg.Server.SessionTTL)
		if cfg.Server.SessionTTL > 0 {
			go sessions.Run(ctx, sweepInterval(cfg.Server.SessionTTL))
		}

		srv, err := server.New(server.Options{
			Sessions:      sessions,
			Analyzer:      analyzer,
			CredentialErr: credentialError(analyzer),
			RateLimit:     cfg.Server.RateLimit,
			RateBurst:     cfg.Server.RateBurst,
			Version:       version,
		})
		if err != nil {
			return err
		}

		httpSrv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.WithFields(log.Fields{
				"addr":     cfg.Server.Addr,
				"analyzer": analyzer.Name(),
			}).Info("meditranslate server starting")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("server exited")
		return nil
	},
}

// sweepInterval checks for idle sessions a few times per TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Second)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Duration("session-ttl", 30*time.Minute, "Idle time after which a session is dropped (0 = never)")
	serveCmd.Flags().Int("rate-limit", 5, "Analyses per minute per client (0 = unlimited)")

	bindFlag(serveCmd.Flags(), config.KeyServerAddr, "addr")
	bindFlag(serveCmd.Flags(), config.KeySessionTTL, "session-ttl")
	bindFlag(serveCmd.Flags(), config.KeyRateLimit, "rate-limit")
}
