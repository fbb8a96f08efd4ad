package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/channkenn/pta-kaikei/internal/ledger"
	applog "github.com/channkenn/pta-kaikei/internal/log"
	"github.com/channkenn/pta-kaikei/internal/session"
)

type loginView struct {
	Years []string
	Year  string
	Error string
}

// yearOptions lists the selectable fiscal years, newest first.
func yearOptions() []string {
	current := time.Now().Year()
	years := make([]string, 0, 6)
	for y := current; y > current-6; y-- {
		years = append(years, strconv.Itoa(y))
	}
	return years
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := s.currentSession(r); ok {
		http.Redirect(w, r, "/ledger", http.StatusSeeOther)
		return
	}
	s.renderLogin(w, r, loginView{Years: yearOptions()}, http.StatusOK)
}

// handleLogin proves the passcode by performing the first read. There
// is no separate authentication endpoint on the remote side.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		s.renderLogin(w, r, loginView{Years: yearOptions(), Error: "リクエストの形式が正しくありません"}, http.StatusBadRequest)
		return
	}

	passcode := sanitizeInput(r.Form.Get("passcode"))
	year := sanitizeInput(r.Form.Get("year"))
	if passcode == "" || year == "" {
		s.renderLogin(w, r, loginView{Years: yearOptions(), Year: year, Error: "パスコードと年度を入力してください"}, http.StatusUnprocessableEntity)
		return
	}

	svc, err := s.provider.ServiceFor(r.Context(), passcode, year)
	if err != nil {
		if remote, ok := ledger.AsRemote(err); ok {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Login rejected", "error", remote.Message, "year", year)
			s.renderLogin(w, r, loginView{Years: yearOptions(), Year: year, Error: remote.Message}, http.StatusUnauthorized)
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Backend init error", "error", err, "year", year)
		s.renderLogin(w, r, loginView{Years: yearOptions(), Year: year, Error: "サーバー内部エラーが発生しました"}, http.StatusInternalServerError)
		return
	}

	sess, err := session.Login(r.Context(), svc, year)
	if err != nil {
		if remote, ok := ledger.AsRemote(err); ok {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Login rejected", "error", remote.Message, "year", year)
			s.renderLogin(w, r, loginView{Years: yearOptions(), Year: year, Error: remote.Message}, http.StatusUnauthorized)
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Login error", "error", err, "year", year)
		s.renderLogin(w, r, loginView{Years: yearOptions(), Year: year, Error: "サーバーに接続できませんでした"}, http.StatusBadGateway)
		return
	}

	s.sessions.Put(sess)
	setSessionCookie(w, sess.ID)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Login succeeded", "session_id", sess.ID, "year", year, "records", len(sess.Records()), "editable", sess.Editable())
	http.Redirect(w, r, "/ledger", http.StatusSeeOther)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, v loginView, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "login.html", v); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Login template execution failed", "error", err)
	}
}
