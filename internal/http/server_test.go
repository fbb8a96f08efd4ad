package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/channkenn/pta-kaikei/internal/core"
	"github.com/channkenn/pta-kaikei/internal/ledger"
	"github.com/channkenn/pta-kaikei/internal/ledger/memory"
	"github.com/channkenn/pta-kaikei/internal/session"
)

type memoryProvider struct{ store *memory.Store }

func (p memoryProvider) ServiceFor(_ context.Context, passcode, year string) (ledger.Service, error) {
	return p.store.ServiceFor(passcode, year), nil
}

type recordingSink struct {
	mu       sync.Mutex
	appended []string
	deleted  []int64
}

func (s *recordingSink) RecordAppended(_ context.Context, year string, rec core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appended = append(s.appended, year+"/"+rec.Category)
}

func (s *recordingSink) RecordDeleted(_ context.Context, _ string, rowNum int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, rowNum)
}

func seedRecord(date, category string, amount int64) core.Record {
	d, _ := time.Parse("2006-01-02", date)
	return core.Record{Date: d, Category: category, Details: category + "の記録", Amount: decimal.NewFromInt(amount)}
}

func newTestServer(t *testing.T, editable bool, opts ...Option) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New("pta2025", editable)
	store.Seed("2025", []core.Record{
		seedRecord("2025-04-01", "前年度繰越金", 12000),
		seedRecord("2025-04-10", "本年度会費", 30000),
		seedRecord("2025-04-15", "印刷費", 4500),
	})
	srv, err := NewServer(":0", memoryProvider{store: store}, session.NewStore(10, time.Minute), core.DefaultCategorySet(), opts...)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, store
}

func postForm(srv *Server, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

// login authenticates against the memory backend and returns the
// session cookie.
func login(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	rr := postForm(srv, "/login", url.Values{"passcode": {"pta2025"}, "year": {"2025"}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login status=%d body=%s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("login response missing session cookie")
	return nil
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("index status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "PTA会計") {
		t.Fatalf("index body missing heading")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestLoginSuccessAndRedirect(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rr := postForm(srv, "/login", url.Values{"passcode": {"pta2025"}, "year": {"2025"}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/ledger" {
		t.Fatalf("redirect to %q, want /ledger", loc)
	}
	cookie := ""
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			cookie = c.Value
		}
	}
	if cookie == "" {
		t.Fatalf("session cookie not set")
	}

	// Index now redirects straight to the ledger.
	rr2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie})
	srv.Handler.ServeHTTP(rr2, req)
	if rr2.Code != http.StatusSeeOther || rr2.Header().Get("Location") != "/ledger" {
		t.Fatalf("index with session: status=%d location=%q", rr2.Code, rr2.Header().Get("Location"))
	}
}

func TestLoginRejectsBadPasscode(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rr := postForm(srv, "/login", url.Values{"passcode": {"wrong"}, "year": {"2025"}})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "パスコードが正しくありません") {
		t.Fatalf("body missing remote rejection message: %s", rr.Body.String())
	}
}

type rejectingProvider struct{ msg string }

func (p rejectingProvider) ServiceFor(_ context.Context, _, _ string) (ledger.Service, error) {
	return nil, &ledger.RemoteError{Message: p.msg}
}

// Some backends check the passcode before handing out a service at
// all; that rejection must read as a failed login, not a server error.
func TestLoginRejectedByProvider(t *testing.T) {
	srv, err := NewServer(":0", rejectingProvider{msg: "パスコードが正しくありません"}, session.NewStore(10, time.Minute), core.DefaultCategorySet())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	rr := postForm(srv, "/login", url.Values{"passcode": {"wrong"}, "year": {"2025"}})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "パスコードが正しくありません") {
		t.Fatalf("body missing rejection message: %s", rr.Body.String())
	}
}

func TestLoginRequiresFields(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rr := postForm(srv, "/login", url.Values{"passcode": {""}, "year": {"2025"}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET /login, got %d", rr.Code)
	}
}

func TestLedgerRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ledger", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestLedgerRendersRecords(t *testing.T) {
	srv, _ := newTestServer(t, true)
	cookie := login(t, srv)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ledger", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("ledger status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"2025年度 出納帳", "前年度繰越金", "印刷費", "¥30,000", "¥4,500"} {
		if !strings.Contains(body, want) {
			t.Fatalf("ledger body missing %q", want)
		}
	}
}

func TestRecordsPartialFilterAndSort(t *testing.T) {
	srv, _ := newTestServer(t, true)
	cookie := login(t, srv)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/records?filter=_INCOME_ONLY_&order=desc", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("partial status=%d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "印刷費") {
		t.Fatalf("income filter leaked an expense row")
	}
	if !strings.Contains(body, "本年度会費") {
		t.Fatalf("income filter dropped an income row")
	}
	// Newest first: the April 10 fee row precedes the April 1 carryover.
	if strings.Index(body, "本年度会費") > strings.Index(body, "前年度繰越金") {
		t.Fatalf("descending order not applied")
	}
}

func TestRecordsPartialUnauthorized(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/records", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestCreateRecord(t *testing.T) {
	sink := &recordingSink{}
	srv, _ := newTestServer(t, true, WithEventSink(sink))
	cookie := login(t, srv)

	rr := postForm(srv, "/records", url.Values{
		"date":     {"2025-05-01"},
		"category": {"行事費"},
		"details":  {"運動会の景品"},
		"amount":   {"5000"},
		"payee":    {"文具店"},
	}, cookie)
	if rr.Code != 200 {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{"record:created", "totals:refresh", "form:reset", "show-notification"} {
		if !strings.Contains(trigger, want) {
			t.Fatalf("HX-Trigger missing %q: %s", want, trigger)
		}
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.appended) != 1 || sink.appended[0] != "2025/行事費" {
		t.Fatalf("sink not notified: %v", sink.appended)
	}

	// The cache was replaced wholesale, so the new row shows up on the
	// next read without another login.
	rr2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/records", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr2, req)
	if !strings.Contains(rr2.Body.String(), "運動会の景品") {
		t.Fatalf("new record missing from partial")
	}
}

func TestCreateRecordValidation(t *testing.T) {
	srv, _ := newTestServer(t, true)
	cookie := login(t, srv)

	cases := []struct {
		name string
		form url.Values
	}{
		{"bad date", url.Values{"date": {"05/01/2025"}, "category": {"行事費"}, "amount": {"5000"}}},
		{"unknown category", url.Values{"date": {"2025-05-01"}, "category": {"遊興費"}, "amount": {"5000"}}},
		{"bad amount", url.Values{"date": {"2025-05-01"}, "category": {"行事費"}, "amount": {"abc"}}},
		{"negative amount", url.Values{"date": {"2025-05-01"}, "category": {"行事費"}, "amount": {"-100"}}},
	}
	for _, tc := range cases {
		rr := postForm(srv, "/records", tc.form, cookie)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d", tc.name, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestCreateRecordReadOnlySession(t *testing.T) {
	srv, _ := newTestServer(t, false)
	cookie := login(t, srv)

	rr := postForm(srv, "/records", url.Values{
		"date":     {"2025-05-01"},
		"category": {"行事費"},
		"amount":   {"5000"},
	}, cookie)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for read-only session, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "編集権限がありません") {
		t.Fatalf("body missing read-only message: %s", rr.Body.String())
	}
}

func TestDeleteRecord(t *testing.T) {
	sink := &recordingSink{}
	srv, _ := newTestServer(t, true, WithEventSink(sink))
	cookie := login(t, srv)

	rr := postForm(srv, "/records/delete", url.Values{"rowNum": {"3"}}, cookie)
	if rr.Code != 200 {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}
	if trigger := rr.Header().Get("HX-Trigger"); !strings.Contains(trigger, "record:deleted") {
		t.Fatalf("HX-Trigger missing record:deleted: %s", trigger)
	}

	sink.mu.Lock()
	deleted := append([]int64(nil), sink.deleted...)
	sink.mu.Unlock()
	if len(deleted) != 1 || deleted[0] != 3 {
		t.Fatalf("sink not notified of delete: %v", deleted)
	}

	rr2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/records", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr2, req)
	if strings.Contains(rr2.Body.String(), "印刷費") {
		t.Fatalf("deleted record still rendered")
	}
}

func TestDeleteRecordUnknownRow(t *testing.T) {
	srv, _ := newTestServer(t, true)
	cookie := login(t, srv)

	rr := postForm(srv, "/records/delete", url.Values{"rowNum": {"999"}}, cookie)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for remote rejection, got %d", rr.Code)
	}

	rr = postForm(srv, "/records/delete", url.Values{"rowNum": {"zero"}}, cookie)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad row number, got %d", rr.Code)
	}
}

func TestSelectionTotals(t *testing.T) {
	srv, _ := newTestServer(t, true)
	cookie := login(t, srv)

	// Only the carryover and the printing bill are checked.
	rr := postForm(srv, "/ui/selection-totals", url.Values{"rows": {"1", "3"}}, cookie)
	if rr.Code != 200 {
		t.Fatalf("totals status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"2件", "¥12,000", "¥4,500", "¥7,500"} {
		if !strings.Contains(body, want) {
			t.Fatalf("totals body missing %q: %s", want, body)
		}
	}

	// Nothing checked: all totals collapse to zero.
	rr = postForm(srv, "/ui/selection-totals", url.Values{}, cookie)
	if !strings.Contains(rr.Body.String(), "0件") {
		t.Fatalf("empty selection should report zero rows: %s", rr.Body.String())
	}
}

func TestSummaryPage(t *testing.T) {
	srv, _ := newTestServer(t, true)
	cookie := login(t, srv)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/report/summary", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("summary status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"収入の部", "支出の部", "¥42,000", "¥4,500", "¥37,500"} {
		if !strings.Contains(body, want) {
			t.Fatalf("summary body missing %q", want)
		}
	}
	// Zero-activity categories still get their row, in chart order.
	if !strings.Contains(body, "慶弔費") {
		t.Fatalf("summary missing zero-activity category")
	}
}

func TestSessionExpiryInvalidatesCookie(t *testing.T) {
	store := memory.New("pta2025", true)
	store.Seed("2025", []core.Record{seedRecord("2025-04-01", "本年度会費", 1000)})
	srv, err := NewServer(":0", memoryProvider{store: store}, session.NewStore(10, 10*time.Millisecond), core.DefaultCategorySet())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	cookie := login(t, srv)

	time.Sleep(20 * time.Millisecond)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/records", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after TTL expiry, got %d", rr.Code)
	}
}
