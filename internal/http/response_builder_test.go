package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilderDefaults(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().BodyString("ok").Write(rr)

	if rr.Code != http.StatusOK {
		t.Fatalf("default status=%d, want 200", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("body=%q", rr.Body.String())
	}
	if rr.Header().Get("HX-Trigger") != "" {
		t.Fatalf("no triggers set, but HX-Trigger=%q", rr.Header().Get("HX-Trigger"))
	}
}

func TestHTMXResponseBuilderTriggers(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerRecordCreated("2025").
		TriggerTotalsRefresh().
		TriggerFormReset().
		TriggerSuccessNotification("記録を追加しました").
		Write(rr)

	raw := rr.Header().Get("HX-Trigger")
	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v (%s)", err, raw)
	}
	for _, name := range []string{"record:created", "totals:refresh", "form:reset", "show-notification"} {
		if _, ok := triggers[name]; !ok {
			t.Fatalf("trigger %q missing from %s", name, raw)
		}
	}

	var created struct {
		Year string `json:"year"`
	}
	if err := json.Unmarshal(triggers["record:created"], &created); err != nil || created.Year != "2025" {
		t.Fatalf("record:created payload wrong: %s", triggers["record:created"])
	}

	var notif struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int    `json:"duration"`
	}
	if err := json.Unmarshal(triggers["show-notification"], &notif); err != nil {
		t.Fatalf("notification payload: %v", err)
	}
	if notif.Type != "success" || notif.Message != "記録を追加しました" || notif.Duration != 3000 {
		t.Fatalf("notification payload wrong: %+v", notif)
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorResponse(http.StatusUnprocessableEntity, `<script>alert("x")</script>`).Write(rr)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "<script>") {
		t.Fatalf("message not escaped: %s", body)
	}
	if !strings.Contains(body, `class="error"`) {
		t.Fatalf("error wrapper missing: %s", body)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("content type=%q", ct)
	}
}

func TestErrorHelpers(t *testing.T) {
	cases := []struct {
		build *HTMXResponseBuilder
		want  int
	}{
		{BadRequestError("x"), http.StatusBadRequest},
		{UnprocessableEntityError("x"), http.StatusUnprocessableEntity},
		{InternalServerError("x"), http.StatusInternalServerError},
		{UnauthorizedError("x"), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		tc.build.Write(rr)
		if rr.Code != tc.want {
			t.Fatalf("status=%d, want %d", rr.Code, tc.want)
		}
	}

	rr := httptest.NewRecorder()
	MethodNotAllowedError("POST").Write(rr)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != "POST" {
		t.Fatalf("Allow=%q", allow)
	}
}

func TestErrorResponseWithNotificationTrigger(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorResponse(http.StatusForbidden, "編集権限がありません").
		TriggerErrorNotification("編集権限がありません").
		Write(rr)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status=%d", rr.Code)
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "show-notification") || !strings.Contains(trigger, `"duration":5000`) {
		t.Fatalf("error notification trigger wrong: %s", trigger)
	}
}
