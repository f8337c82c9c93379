package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/codingniket/FinApp/internal/core"
	applog "github.com/codingniket/FinApp/internal/log"
)

// layout is embedded by every page model.
type layout struct {
	Title    string
	Nav      string
	UserName string
	Alerts   []Alert
}

var templateFuncs = template.FuncMap{
	"categoryIcon": core.CategoryIcon,
}

func (s *Server) newLayout(w http.ResponseWriter, r *http.Request, title, nav string) layout {
	l := layout{
		Title:  title,
		Nav:    nav,
		Alerts: takeFlash(w, r),
	}
	if user := userFromContext(r.Context()); user.ID != "" {
		l.UserName = user.DisplayName()
	}
	return l
}

// render executes the named template into a buffer so a failing template
// never produces a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender,
			"template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
