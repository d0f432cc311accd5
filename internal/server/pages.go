package server

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/valpere/meditranslate/internal/catalog"
	"github.com/valpere/meditranslate/internal/flow"
	"github.com/valpere/meditranslate/internal/ingest"
	"github.com/valpere/meditranslate/internal/markdown"
)

const (
	sessionCookie = "meditranslate_session"
	pageTemplate  = "page.tmpl"
)

var templateFuncs = template.FuncMap{
	"mb": func(n int64) string {
		return formatMB(n)
	},
}

type pageData struct {
	State      flow.State
	Kind       flow.Kind
	Languages  []catalog.Language
	MaxSize    int64
	Notice     string
	ResultHTML template.HTML
}

// cookieSession returns the session named by the request cookie, if it is
// still live.
func (s *Server) cookieSession(c *gin.Context) (*flow.Controller, bool) {
	id, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.Get(id)
}

// pageState is the state shown to the browser. A visitor without a session
// sees the upload page.
func (s *Server) pageState(c *gin.Context) (flow.State, *flow.Controller) {
	if ctrl, ok := s.cookieSession(c); ok {
		return ctrl.State(), ctrl
	}
	return flow.Upload{}, nil
}

func (s *Server) newPageSession(c *gin.Context) *flow.Controller {
	id, ctrl := s.sessions.Create()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	return ctrl
}

func (s *Server) render(c *gin.Context, status int, st flow.State, notice string) {
	data := pageData{
		State:     st,
		Kind:      st.Kind(),
		Languages: catalog.List(),
		MaxSize:   ingest.MaxSize,
		Notice:    notice,
	}
	if res, ok := st.(flow.Results); ok {
		data.ResultHTML = template.HTML(markdown.ToHTML([]byte(res.Result.Markdown())))
	}
	c.HTML(status, pageTemplate, data)
}

func (s *Server) page(c *gin.Context) {
	st, _ := s.pageState(c)
	s.render(c, http.StatusOK, st, "")
}

func (s *Server) pageUpload(c *gin.Context) {
	st, ctrl := s.pageState(c)
	if st.Kind() != flow.KindUpload {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	file, err := s.readUpload(c)
	if err != nil {
		s.render(c, ingestStatus(err), st, ingest.Message(err))
		return
	}
	if ctrl == nil {
		ctrl = s.newPageSession(c)
	}
	_ = ctrl.FileSelected(file)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) pageLanguage(c *gin.Context) {
	st, ctrl := s.pageState(c)
	if st.Kind() != flow.KindLanguageSelect {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	lang, ok := catalog.Lookup(c.PostForm("code"))
	if !ok {
		s.render(c, http.StatusBadRequest, st, "Please choose one of the listed languages.")
		return
	}

	refund, ok := s.takeToken(c)
	if !ok {
		s.render(c, http.StatusTooManyRequests, st, "Too many analyses started. Please wait a minute and try again.")
		return
	}
	if err := ctrl.LanguageChosen(c.Request.Context(), lang); err != nil {
		refund()
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) pageBack(c *gin.Context) {
	if ctrl, ok := s.cookieSession(c); ok {
		_ = ctrl.Back()
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) pageReset(c *gin.Context) {
	if ctrl, ok := s.cookieSession(c); ok {
		_ = ctrl.Reset()
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func formatMB(n int64) string {
	return strconv.FormatFloat(float64(n)/(1<<20), 'f', 1, 64) + " MB"
}
