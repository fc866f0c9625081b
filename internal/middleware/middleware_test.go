package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type recordedRequest struct {
	method, route, status string
}

type fakeRecorder struct {
	requests []recordedRequest
}

func (f *fakeRecorder) ObserveRequest(method, route, status string, _ float64) {
	f.requests = append(f.requests, recordedRequest{method, route, status})
}
func (f *fakeRecorder) IncProviderCall(string, string) {}
func (f *fakeRecorder) ObserveArtifact(string, int64)  {}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("generated id %q, header %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "abc-123" {
		t.Fatalf("incoming id not kept: %q", seen)
	}
}

func TestInboundRequestID(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"  trace-42 ", "trace-42", true},
		{"", "", false},
		{"has space", "", false},
		{"tab\tid", "", false},
		{"caf\u00e9", "", false},
		{strings.Repeat("a", maxRequestIDLen), strings.Repeat("a", maxRequestIDLen), true},
		{strings.Repeat("a", maxRequestIDLen+1), "", false},
	}
	for _, tc := range cases {
		got, ok := inboundRequestID(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("inboundRequestID(%q) = %q, %v; want %q, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLoggerInjectsRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	recorder := &fakeRecorder{}

	r := chi.NewRouter()
	r.Use(RequestID, Logger(base, recorder))
	r.Get("/files/{kind}/{filename}", func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/files/image/missing.png", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("log lines = %d: %s", len(lines), buf.String())
	}
	for _, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		if entry["request_id"] != "rid-1" {
			t.Fatalf("request_id = %v", entry["request_id"])
		}
	}
	if len(recorder.requests) != 1 {
		t.Fatalf("recorded %d requests", len(recorder.requests))
	}
	got := recorder.requests[0]
	if got.route != "/files/{kind}/{filename}" || got.status != "404" || got.method != http.MethodGet {
		t.Fatalf("recorded %+v", got)
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	wild := CORS([]string{"*"})(next)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	wild.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("wildcard origin header = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatalf("wildcard must not allow credentials")
	}

	listed := CORS([]string{"https://app.example"})(next)
	rec = httptest.NewRecorder()
	listed.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Fatalf("listed origin header = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	other := httptest.NewRequest(http.MethodOptions, "/", nil)
	other.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	listed.ServeHTTP(rec, other)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("preflight code=%d origin=%q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
