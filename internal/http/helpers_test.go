package http

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/channkenn/pta-kaikei/internal/core"
)

func TestParseFilterSortDefaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/ui/records", nil)
	filter, order := parseFilterSort(req)
	if filter != core.FilterAll || order != core.SortAsc {
		t.Fatalf("defaults = %q/%q", filter, order)
	}

	req = httptest.NewRequest("GET", "/ui/records?filter=_INCOME_ONLY_&order=desc", nil)
	filter, order = parseFilterSort(req)
	if filter != core.FilterIncomeOnly || order != core.SortDesc {
		t.Fatalf("got %q/%q", filter, order)
	}

	// Unknown order values fall back to ascending.
	req = httptest.NewRequest("GET", "/ui/records?order=sideways", nil)
	if _, order := parseFilterSort(req); order != core.SortAsc {
		t.Fatalf("unknown order not defaulted: %q", order)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  会議費  "); got != "会議費" {
		t.Fatalf("trim failed: %q", got)
	}
	if got := sanitizeInput("a\x00b\x07c"); got != "abc" {
		t.Fatalf("control chars kept: %q", got)
	}
	if got := sanitizeInput("line1\nline2"); got != "line1\nline2" {
		t.Fatalf("newline should survive: %q", got)
	}
}

func TestGenerateRequestID(t *testing.T) {
	a, b := generateRequestID(), generateRequestID()
	if !strings.HasPrefix(a, "req_") || a == b {
		t.Fatalf("request IDs not unique: %q %q", a, b)
	}
}
