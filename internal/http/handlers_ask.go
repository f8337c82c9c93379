package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/codingniket/FinApp/internal/api"
	applog "github.com/codingniket/FinApp/internal/log"
)

type askPage struct {
	layout
	Question string
	Answer   string
	Error    string
}

func (s *Server) handleAskForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "ask.html", askPage{layout: s.newLayout(w, r, "Ask AI", "ask")})
}

// handleAsk forwards the question to the wallet backend as typed. A blank
// question sends nothing.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	page := askPage{
		layout:   s.newLayout(w, r, "Ask AI", "ask"),
		Question: r.PostForm.Get("question"),
	}
	if strings.TrimSpace(page.Question) == "" {
		s.render(w, r, http.StatusOK, "ask.html", page)
		return
	}

	answer, err := s.wallet.AskAI(ctx, page.Question)
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Ask AI failed", applog.FieldError, err, applog.FieldOperation, applog.OpAsk)
		page.Error = askErrorMessage(err)
	} else {
		page.Answer = answer
	}
	s.render(w, r, http.StatusOK, "ask.html", page)
}

func askErrorMessage(err error) string {
	var aiErr *api.AIError
	if errors.As(err, &aiErr) {
		return aiErr.Message
	}
	return api.ErrUnreachable.Error()
}
