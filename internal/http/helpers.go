package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/channkenn/pta-kaikei/internal/core"
	"github.com/channkenn/pta-kaikei/internal/session"
)

const sessionCookieName = "kaikei_session"

// currentSession resolves the session cookie against the session store.
func (s *Server) currentSession(r *http.Request) (*session.Session, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return s.sessions.Get(cookie.Value)
}

// setSessionCookie binds a freshly created session to the client.
func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// parseFilterSort extracts the filter key and sort order from query
// parameters. Absent or unrecognized values fall back to showing
// everything oldest first.
func parseFilterSort(r *http.Request) (filterKey string, order core.SortOrder) {
	filterKey = strings.TrimSpace(r.URL.Query().Get("filter"))
	if filterKey == "" {
		filterKey = core.FilterAll
	}
	order = core.SortAsc
	if strings.TrimSpace(r.URL.Query().Get("order")) == string(core.SortDesc) {
		order = core.SortDesc
	}
	return filterKey, order
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
