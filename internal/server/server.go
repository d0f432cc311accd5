// Package server exposes the report flow over HTTP: plain HTML pages for a
// browser and a JSON API.
package server

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/valpere/meditranslate/internal/analysis"
	"github.com/valpere/meditranslate/internal/ingest"
	"github.com/valpere/meditranslate/internal/metrics"
	"github.com/valpere/meditranslate/internal/session"
)

const (
	EndPointHealth    = "/health"
	EndPointMetrics   = "/metrics"
	EndPointLanguages = "/api/languages"
	EndPointSessions  = "/api/sessions"

	// maxBodySize leaves room for base64 and multipart overhead above ingest.MaxSize.
	maxBodySize = ingest.MaxSize*4/3 + 1<<20
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Options struct {
	Sessions *session.Store
	Analyzer analysis.Analyzer
	// CredentialErr is reported by /health when the analyzer is unusable.
	CredentialErr error
	// RateLimit is analyses per minute per client; zero disables limiting.
	// Only requests that start an analysis are charged.
	RateLimit int
	RateBurst int
	Version   string
}

type Server struct {
	sessions      *session.Store
	analyzer      analysis.Analyzer
	credentialErr error
	limiter       *RateLimiter
	version       string
	router        *gin.Engine
}

func New(opts Options) (*Server, error) {
	s := &Server{
		sessions:      opts.Sessions,
		analyzer:      opts.Analyzer,
		credentialErr: opts.CredentialErr,
		version:       opts.Version,
	}
	if opts.RateLimit > 0 {
		s.limiter = NewRateLimiter(opts.RateLimit, opts.RateBurst)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	metrics.Register()

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.SetHTMLTemplate(tmpl)
	router.MaxMultipartMemory = ingest.MaxSize

	router.GET(EndPointHealth, s.health)
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	// Browser pages, one session per cookie. The session is created by the
	// first accepted upload.
	router.GET("/", s.page)
	router.POST("/upload", s.pageUpload)
	router.POST("/language", s.pageLanguage)
	router.POST("/back", s.pageBack)
	router.POST("/reset", s.pageReset)

	api := router.Group("/api")
	{
		api.GET("/languages", s.listLanguages)
		api.POST("/sessions", s.createSession)

		sess := api.Group("/sessions/:id", s.loadSession)
		{
			sess.GET("", s.getSession)
			sess.DELETE("", s.deleteSession)
			sess.POST("/file", s.uploadFile)
			sess.POST("/language", s.chooseLanguage)
			sess.POST("/back", s.back)
			sess.POST("/reset", s.reset)
		}
	}

	s.router = router
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	status := "healthy"
	credential := "ok"
	if s.credentialErr != nil {
		status = "degraded"
		credential = analysis.Code(s.credentialErr)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"service":    "meditranslate",
		"version":    s.version,
		"analyzer":   s.analyzer.Name(),
		"credential": credential,
		"sessions":   s.sessions.Len(),
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).Round(time.Millisecond).String(),
			"client":   c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Debug("request")
	}
}
