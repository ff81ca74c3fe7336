package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteJSON(rec, http.StatusTeapot, map[string]string{"key": "value"}); err != nil {
		t.Fatal(err)
	}

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["key"] != "value" {
		t.Errorf("body = %v", body)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name  string
		write func(w http.ResponseWriter)
		want  int
	}{
		{"bad request", func(w http.ResponseWriter) { WriteBadRequest(w, "bad") }, http.StatusBadRequest},
		{"unauthorized", func(w http.ResponseWriter) { WriteUnauthorized(w, "no") }, http.StatusUnauthorized},
		{"forbidden", func(w http.ResponseWriter) { WriteForbidden(w, "denied") }, http.StatusForbidden},
		{"not found", func(w http.ResponseWriter) { WriteNotFound(w, "gone") }, http.StatusNotFound},
		{"internal", func(w http.ResponseWriter) { WriteInternalError(w, errors.New("boom")) }, http.StatusInternalServerError},
		{"unavailable", func(w http.ResponseWriter) { WriteServiceUnavailable(w, "later") }, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["error"] == "" {
				t.Error("error responses carry an error field")
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	var dst map[string]string
	if err := ParseJSON(req, &dst); err != nil {
		t.Fatal(err)
	}
	if dst["name"] != "x" {
		t.Errorf("dst = %v", dst)
	}
}

func TestParseJSONRejectsTrailingContent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}{"b":2}`))
	var dst map[string]interface{}
	if err := ParseJSON(req, &dst); err == nil {
		t.Error("expected an error for multiple JSON documents")
	}
}

func TestParseJSONOrError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	var dst map[string]interface{}

	if ParseJSONOrError(rec, req, &dst) {
		t.Error("malformed body should be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25&sort=name&bad=abc", nil)

	if got := ParseQueryInt(req, "limit", 10); got != 25 {
		t.Errorf("limit = %d", got)
	}
	if got := ParseQueryInt(req, "absent", 10); got != 10 {
		t.Errorf("absent = %d", got)
	}
	if got := ParseQueryInt(req, "bad", 10); got != 10 {
		t.Errorf("bad = %d, want fallback", got)
	}
	if got := ParseQueryString(req, "sort", "id"); got != "name" {
		t.Errorf("sort = %q", got)
	}
	if got := ParseQueryString(req, "absent", "id"); got != "id" {
		t.Errorf("absent = %q", got)
	}
}
