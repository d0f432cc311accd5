package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/valpere/meditranslate/internal/analysis"
	"github.com/valpere/meditranslate/internal/catalog"
	"github.com/valpere/meditranslate/internal/flow"
	"github.com/valpere/meditranslate/internal/ingest"
	"github.com/valpere/meditranslate/internal/metrics"
)

const (
	ctxSessionID  = "session_id"
	ctxController = "controller"

	// maxWait caps the long-poll duration of GET /api/sessions/:id?wait=.
	maxWait = 60 * time.Second
)

// StateView is the JSON form of a session's flow state.
type StateView struct {
	ID        string              `json:"id"`
	State     flow.Kind           `json:"state"`
	File      *ingest.EncodedFile `json:"file,omitempty"`
	Language  *catalog.Language   `json:"language,omitempty"`
	Result    *analysis.Result    `json:"result,omitempty"`
	Error     string              `json:"error,omitempty"`
	ErrorCode string              `json:"errorCode,omitempty"`
}

func newStateView(id string, st flow.State) StateView {
	v := StateView{ID: id, State: st.Kind()}
	switch s := st.(type) {
	case flow.LanguageSelect:
		v.File = &s.File
	case flow.Processing:
		v.File = &s.File
		v.Language = &s.Language
	case flow.Results:
		v.Result = &s.Result
	case flow.Failure:
		v.Error = s.Message
		v.ErrorCode = analysis.Code(s.Err)
	}
	return v
}

type uploadRequest struct {
	Name string `json:"name"`
	Data string `json:"data" binding:"required"`
}

type languageRequest struct {
	Code string `json:"code" form:"code" binding:"required"`
}

func (s *Server) listLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.List())
}

func (s *Server) createSession(c *gin.Context) {
	id, ctrl := s.sessions.Create()
	c.JSON(http.StatusCreated, newStateView(id, ctrl.State()))
}

// loadSession resolves :id or aborts with 404.
func (s *Server) loadSession(c *gin.Context) {
	id := c.Param("id")
	ctrl, ok := s.sessions.Get(id)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Session not found", "code": "not_found"})
		return
	}
	c.Set(ctxSessionID, id)
	c.Set(ctxController, ctrl)
	c.Next()
}

func sessionFrom(c *gin.Context) (string, *flow.Controller) {
	return c.GetString(ctxSessionID), c.MustGet(ctxController).(*flow.Controller)
}

func (s *Server) getSession(c *gin.Context) {
	id, ctrl := sessionFrom(c)

	st := ctrl.State()
	if raw := c.Query("wait"); raw != "" && st.Kind() == flow.KindProcessing {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wait duration", "code": "bad_request"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), min(d, maxWait))
		defer cancel()
		st, _ = ctrl.Wait(ctx)
	}
	c.JSON(http.StatusOK, newStateView(id, st))
}

func (s *Server) deleteSession(c *gin.Context) {
	id, _ := sessionFrom(c)
	s.sessions.Delete(id)
	c.Status(http.StatusNoContent)
}

func (s *Server) uploadFile(c *gin.Context) {
	id, ctrl := sessionFrom(c)

	if k := ctrl.State().Kind(); k != flow.KindUpload {
		s.conflict(c, id, ctrl)
		return
	}

	file, err := s.readUpload(c)
	if err != nil {
		c.JSON(ingestStatus(err), gin.H{"error": ingest.Message(err), "code": ingestLabel(err)})
		return
	}

	if err := ctrl.FileSelected(file); err != nil {
		s.conflict(c, id, ctrl)
		return
	}
	c.JSON(http.StatusOK, newStateView(id, ctrl.State()))
}

func (s *Server) chooseLanguage(c *gin.Context) {
	id, ctrl := sessionFrom(c)

	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": "bad_request"})
		return
	}
	lang, ok := catalog.Lookup(req.Code)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language: " + req.Code, "code": "unsupported_language"})
		return
	}

	if ctrl.State().Kind() != flow.KindLanguageSelect {
		s.conflict(c, id, ctrl)
		return
	}

	refund, ok := s.takeToken(c)
	if !ok {
		s.rateLimited(c)
		return
	}
	if err := ctrl.LanguageChosen(c.Request.Context(), lang); err != nil {
		refund()
		s.conflict(c, id, ctrl)
		return
	}
	log.WithFields(log.Fields{"session": id, "language": lang.Code}).Info("analysis started")
	c.JSON(http.StatusAccepted, newStateView(id, ctrl.State()))
}

func (s *Server) back(c *gin.Context) {
	id, ctrl := sessionFrom(c)
	if err := ctrl.Back(); err != nil {
		s.conflict(c, id, ctrl)
		return
	}
	c.JSON(http.StatusOK, newStateView(id, ctrl.State()))
}

func (s *Server) reset(c *gin.Context) {
	id, ctrl := sessionFrom(c)
	if err := ctrl.Reset(); err != nil {
		s.conflict(c, id, ctrl)
		return
	}
	c.JSON(http.StatusOK, newStateView(id, ctrl.State()))
}

func (s *Server) conflict(c *gin.Context, id string, ctrl *flow.Controller) {
	st := ctrl.State()
	c.JSON(http.StatusConflict, gin.H{
		"error": "This action is not available while the report is in state " + string(st.Kind()),
		"code":  "invalid_transition",
		"state": newStateView(id, st),
	})
}

// readUpload accepts a multipart "file" field or a JSON body with a data URL.
func (s *Server) readUpload(c *gin.Context) (ingest.EncodedFile, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var src ingest.File
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req uploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return ingest.EncodedFile{}, uploadError(err)
		}
		src = ingest.FromDataURL(req.Name, req.Data)
	} else {
		fh, err := c.FormFile("file")
		if err != nil {
			return ingest.EncodedFile{}, uploadError(err)
		}
		src = ingest.FromMultipart(fh)
	}

	file, err := ingest.Validate(src)
	metrics.IngestTotal.WithLabelValues(ingestLabel(err)).Inc()
	if err != nil {
		log.WithFields(log.Fields{
			"file": src.Name,
			"type": src.MimeType,
			"size": src.Size,
		}).WithError(err).Info("upload rejected")
	}
	return file, err
}

func uploadError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		metrics.IngestTotal.WithLabelValues(ingestLabel(ingest.ErrTooLarge)).Inc()
		return ingest.ErrTooLarge
	}
	metrics.IngestTotal.WithLabelValues(ingestLabel(ingest.ErrRead)).Inc()
	return errors.Join(ingest.ErrRead, err)
}

func ingestStatus(err error) int {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ingest.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

func ingestLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ingest.ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, ingest.ErrTooLarge):
		return "too_large"
	default:
		return "read_error"
	}
}
